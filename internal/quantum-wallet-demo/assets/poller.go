package assets

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
)

// Kind names one of the two wallet handles whose balances are tracked.
type Kind string

const (
	KindEmbedded Kind = "embedded"
	KindSmart    Kind = "smart"
)

// Snapshot holds the last loaded balances for a handle. Nil means not loaded.
type Snapshot struct {
	Native *big.Int
	Token  *big.Int
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{}
	if s.Native != nil {
		out.Native = new(big.Int).Set(s.Native)
	}
	if s.Token != nil {
		out.Token = new(big.Int).Set(s.Token)
	}
	return out
}

type BalanceReader interface {
	BalanceOf(ctx context.Context, network string, token common.Address, owner common.Address) (*big.Int, error)
}

type NetworkSource interface {
	ActiveNetwork() (string, error)
}

type PollerConfig struct {
	Interval   time.Duration
	MaxRetries uint64
}

// Poller keeps native and USDC balances for the embedded and smart handles on the active network.
// Snapshots reset to "not loaded" whenever a handle or the active chain changes.
type Poller struct {
	reader   BalanceReader
	networks NetworkSource
	tokens   *TokenTable
	cfg      PollerConfig

	mu         sync.RWMutex
	handles    map[Kind]common.Address
	snapshots  map[Kind]Snapshot
	generation uint64
	onChange   []func()

	kick chan struct{}
}

func NewPoller(reader BalanceReader, networks NetworkSource, tokens *TokenTable, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	return &Poller{
		reader:    reader,
		networks:  networks,
		tokens:    tokens,
		cfg:       cfg,
		handles:   map[Kind]common.Address{},
		snapshots: map[Kind]Snapshot{},
		kick:      make(chan struct{}, 1),
	}
}

// OnChange registers fn to run after snapshots change.
func (p *Poller) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = append(p.onChange, fn)
	p.mu.Unlock()
}

func (p *Poller) notify() {
	p.mu.RLock()
	fns := append([]func(){}, p.onChange...)
	p.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (p *Poller) wake() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Track sets the handles to query. A zero address stops tracking that handle.
func (p *Poller) Track(embedded, smart common.Address) {
	p.mu.Lock()
	changed := false
	for kind, addr := range map[Kind]common.Address{KindEmbedded: embedded, KindSmart: smart} {
		if p.handles[kind] == addr {
			continue
		}
		changed = true
		p.handles[kind] = addr
		delete(p.snapshots, kind)
	}
	if changed {
		p.generation++
	}
	p.mu.Unlock()

	if changed {
		p.notify()
		p.wake()
	}
}

// Invalidate drops all snapshots and schedules a refresh (used on chain switch).
func (p *Poller) Invalidate() {
	p.mu.Lock()
	p.generation++
	p.snapshots = map[Kind]Snapshot{}
	p.mu.Unlock()

	p.notify()
	p.wake()
}

func (p *Poller) Snapshot(kind Kind) Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshots[kind].clone()
}

// Refresh runs one pass over every tracked handle.
func (p *Poller) Refresh(ctx context.Context) error {
	// gen is taken before the network lookup so a switch in between voids this pass
	p.mu.RLock()
	gen := p.generation
	handles := make(map[Kind]common.Address, len(p.handles))
	for k, v := range p.handles {
		handles[k] = v
	}
	p.mu.RUnlock()

	network, err := p.networks.ActiveNetwork()
	if err != nil {
		return err
	}
	usdc, err := p.tokens.USDCFor(network)
	if err != nil {
		return err
	}
	native := common.HexToAddress(constants.NativeAddr)

	fresh := map[Kind]Snapshot{}
	for kind, owner := range handles {
		if owner == (common.Address{}) {
			continue
		}
		snap := Snapshot{}
		snap.Native = p.read(ctx, network, native, owner)
		snap.Token = p.read(ctx, network, usdc.Address, owner)
		fresh[kind] = snap
	}

	p.mu.Lock()
	if gen != p.generation {
		// handles or chain changed mid-pass; the next pass will load them
		p.mu.Unlock()
		return nil
	}
	for kind, snap := range fresh {
		prev := p.snapshots[kind]
		if snap.Native == nil {
			snap.Native = prev.Native
		}
		if snap.Token == nil {
			snap.Token = prev.Token
		}
		p.snapshots[kind] = snap
	}
	p.mu.Unlock()

	p.notify()
	return nil
}

func (p *Poller) read(ctx context.Context, network string, token, owner common.Address) *big.Int {
	var out *big.Int
	op := func() error {
		v, err := p.reader.BalanceOf(ctx, network, token, owner)
		if err != nil {
			return err
		}
		out = v
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		log.Warn("balance query failed", "network", network, "token", token.Hex(), "owner", owner.Hex(), "error", err)
		return nil
	}
	return out
}

// Run refreshes on every interval tick and whenever Track or Invalidate is called.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Warn("balance refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("balance poller exiting")
			return
		case <-ticker.C:
		case <-p.kick:
		}
	}
}
