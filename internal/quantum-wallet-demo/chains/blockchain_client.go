package chains

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/quantumauth-io/quantum-go-utils/retry"
)

// BlockchainClientWithCache serves HeaderByNumber(nil) from a header refreshed in the background.
type BlockchainClientWithCache struct {
	latestHeader             atomic.Pointer[types.Header]
	timeReceivedLatestHeader atomic.Pointer[time.Time]
	EVMClient
}

func NewBlockchainClientWithCache(ctx context.Context, client EVMClient,
	durationBetweenGetLatestHeaderRequestsMilliseconds int) (*BlockchainClientWithCache, error) {
	cc := &BlockchainClientWithCache{
		EVMClient: client,
	}

	if err := cc.getLatestHeaderFromChain(ctx); err != nil {
		return nil, err
	}

	go maintainLatestHeaderFromChain(ctx, cc, durationBetweenGetLatestHeaderRequestsMilliseconds)

	return cc, nil
}

func maintainLatestHeaderFromChain(ctx context.Context, cc *BlockchainClientWithCache,
	durationBetweenGetLatestHeaderRequestsMilliseconds int) {
	duration := time.Duration(durationBetweenGetLatestHeaderRequestsMilliseconds) * time.Millisecond
	cfg := retry.DefaultConfig()
	cfg.MaxDelayBeforeRetrying = duration
	cfg.InitialDelayBeforeRetrying = duration / 10

	timer := time.NewTimer(duration)
	defer timer.Stop()
	numCallsToChain := 0
	for {
		timer.Reset(duration)
		select {
		case <-ctx.Done():
			log.Info("header cache refresher exiting", "numCallsToChain", numCallsToChain)
			return
		case <-timer.C:
			_, _ = retry.Retry(ctx, cfg,
				func(ctx context.Context) ([]interface{}, error) {
					numCallsToChain++
					return nil, cc.getLatestHeaderFromChain(ctx)
				},
				nil, // always retry
				"get latest header from chain")
		}
	}
}

func (b *BlockchainClientWithCache) getLatestHeaderFromChain(ctx context.Context) error {
	header, err := b.EVMClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to get latest header from chain")
	}
	received := time.Now().UTC()
	b.latestHeader.Store(header)
	b.timeReceivedLatestHeader.Store(&received)
	return nil
}

func (b *BlockchainClientWithCache) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if number != nil {
		return b.EVMClient.HeaderByNumber(ctx, number)
	}
	if h := b.latestHeader.Load(); h != nil {
		return h, nil
	}
	return b.EVMClient.HeaderByNumber(ctx, nil)
}

// LatestHeaderAge reports how old the cached header is.
func (b *BlockchainClientWithCache) LatestHeaderAge() time.Duration {
	t := b.timeReceivedLatestHeader.Load()
	if t == nil {
		return 0
	}
	return time.Since(*t)
}

func (b *BlockchainClientWithCache) Close() {
	if closer, ok := b.EVMClient.(interface{ Close() }); ok {
		closer.Close()
	}
}
