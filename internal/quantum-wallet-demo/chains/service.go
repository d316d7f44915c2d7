package chains

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrNoActiveChain  = errors.New("no active chain")
	ErrNotTogglable   = errors.New("toggle needs exactly two supported networks")
)

// DialFunc opens clients for a resolved network.
type DialFunc func(ctx context.Context, chain ResolvedChain) (*ChainClients, error)

type ChainConfig struct {
	Chains                                             *AllChainsConfig
	DefaultActiveNetwork                               string
	PreferredRPCName                                   string
	DurationBetweenGetLatestHeaderRequestsMilliseconds int
	Dial                                               DialFunc
}

type ChainClients struct {
	WS   *ethclient.Client
	HTTP EVMClient
}

type ResolvedChain struct {
	NetworkName string
	DisplayName string
	ChainID     uint64
	ChainIDHex  string
	EntryPoint  string
	Explorer    string

	RPCName string
	URL     string
	WSS     string
}

type activeChain struct {
	resolved ResolvedChain
	clients  *ChainClients
}

type QAChainService struct {
	ctx              context.Context
	cfg              ChainConfig
	active           atomic.Pointer[activeChain]
	mu               sync.Mutex
	clientsByNetwork map[string]*ChainClients

	observersMu sync.Mutex
	observers   []func(ResolvedChain)
}

func NewQAChainService(ctx context.Context, cfg ChainConfig) (*QAChainService, error) {
	if cfg.Chains == nil {
		return nil, errors.New("chains config is nil")
	}
	if strings.TrimSpace(cfg.DefaultActiveNetwork) == "" {
		return nil, errors.New("active network is empty")
	}

	service := &QAChainService{
		ctx:              ctx,
		cfg:              cfg,
		clientsByNetwork: make(map[string]*ChainClients),
	}
	if service.cfg.Dial == nil {
		service.cfg.Dial = service.dialChainClients
	}

	if err := service.SwitchChain(ctx, cfg.DefaultActiveNetwork); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *QAChainService) Active() (*ChainClients, error) {
	current := s.active.Load()
	if current == nil {
		return nil, ErrNoActiveChain
	}
	return current.clients, nil
}

func (s *QAChainService) ActiveHTTP(ctx context.Context) (EVMClient, error) {
	_ = ctx

	current := s.active.Load()
	if current == nil || current.clients == nil || current.clients.HTTP == nil {
		return nil, errors.New("no active http client")
	}

	return current.clients.HTTP, nil
}

func (s *QAChainService) ActiveNetwork() (string, error) {
	current := s.active.Load()
	if current == nil {
		return "", ErrNoActiveChain
	}
	return current.resolved.NetworkName, nil
}

func (s *QAChainService) ActiveChain() (ResolvedChain, error) {
	current := s.active.Load()
	if current == nil {
		return ResolvedChain{}, ErrNoActiveChain
	}
	return current.resolved, nil
}

// Supported lists configured network names in a stable order.
func (s *QAChainService) Supported() []string {
	names := make([]string, 0, len(s.cfg.Chains.Networks))
	for name := range s.cfg.Chains.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OnSwitch registers fn to run after the active chain changes.
func (s *QAChainService) OnSwitch(fn func(ResolvedChain)) {
	if fn == nil {
		return
	}
	s.observersMu.Lock()
	s.observers = append(s.observers, fn)
	s.observersMu.Unlock()
}

func (s *QAChainService) SwitchChain(ctx context.Context, networkName string) error {
	networkName = strings.ToLower(strings.TrimSpace(networkName))
	if networkName == "" {
		return errors.New("network name is empty")
	}

	// no-op if already active
	if current := s.active.Load(); current != nil {
		if strings.EqualFold(current.resolved.NetworkName, networkName) {
			return nil
		}
	}

	resolved, err := s.ResolveNetworkByName(networkName)
	if err != nil {
		return err
	}

	clients, err := s.ClientsForNetwork(ctx, networkName)
	if err != nil {
		return err
	}

	s.active.Store(&activeChain{
		resolved: resolved,
		clients:  clients,
	})
	log.Info("switched chain", "network", resolved.NetworkName, "chain_id", resolved.ChainID)

	s.observersMu.Lock()
	observers := append([]func(ResolvedChain){}, s.observers...)
	s.observersMu.Unlock()
	for _, fn := range observers {
		fn(resolved)
	}
	return nil
}

// Toggle switches to the other of exactly two supported networks and returns its name.
func (s *QAChainService) Toggle(ctx context.Context) (string, error) {
	supported := s.Supported()
	if len(supported) != 2 {
		return "", ErrNotTogglable
	}

	current, err := s.ActiveNetwork()
	if err != nil {
		return "", err
	}

	next := supported[0]
	if strings.EqualFold(current, supported[0]) {
		next = supported[1]
	}

	if err := s.SwitchChain(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// ClientsForNetwork returns (and caches) clients for a specific network WITHOUT changing active chain.
func (s *QAChainService) ClientsForNetwork(ctx context.Context, networkName string) (*ChainClients, error) {
	networkName = strings.TrimSpace(networkName)
	if networkName == "" {
		return nil, errors.New("network name is empty")
	}

	cacheKey := strings.ToLower(networkName)

	s.mu.Lock()
	if existing := s.clientsByNetwork[cacheKey]; existing != nil {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	resolved, err := s.ResolveNetworkByName(networkName)
	if err != nil {
		return nil, err
	}

	// Dial outside the lock
	dialed, err := s.cfg.Dial(ctx, resolved)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing := s.clientsByNetwork[cacheKey]; existing != nil {
		s.mu.Unlock()
		// raced: keep the cached clients
		safeCloseClients(dialed)
		return existing, nil
	}
	s.clientsByNetwork[cacheKey] = dialed
	s.mu.Unlock()

	return dialed, nil
}

// Close closes all cached clients (call on shutdown).
func (s *QAChainService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, clients := range s.clientsByNetwork {
		if clients != nil {
			safeCloseClients(clients)
		}
		delete(s.clientsByNetwork, key)
	}

	s.active.Store(nil)
	return nil
}

func (s *QAChainService) dialChainClients(ctx context.Context, chain ResolvedChain) (*ChainClients, error) {
	if strings.TrimSpace(chain.URL) == "" {
		return nil, errors.New("invalid chain rpc config (missing url)")
	}

	httpClient, err := ethclient.DialContext(ctx, chain.URL)
	if err != nil {
		return nil, fmt.Errorf("dial http %q: %w", chain.NetworkName, err)
	}

	out := &ChainClients{HTTP: httpClient}

	if millis := s.cfg.DurationBetweenGetLatestHeaderRequestsMilliseconds; millis > 0 {
		cached, err := NewBlockchainClientWithCache(s.ctx, httpClient, millis)
		if err != nil {
			httpClient.Close()
			return nil, err
		}
		out.HTTP = cached
	}

	if strings.TrimSpace(chain.WSS) != "" {
		wsClient, err := ethclient.DialContext(ctx, chain.WSS)
		if err != nil {
			safeCloseClients(out)
			return nil, fmt.Errorf("dial wss %q: %w", chain.NetworkName, err)
		}
		out.WS = wsClient
	}

	return out, nil
}

func safeCloseClients(c *ChainClients) {
	if c == nil {
		return
	}

	if c.WS != nil {
		c.WS.Close()
	}

	if c.HTTP != nil {
		if closer, ok := c.HTTP.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

func (s *QAChainService) ResolveNetworkByName(networkName string) (ResolvedChain, error) {
	networkName = strings.ToLower(strings.TrimSpace(networkName))
	if networkName == "" {
		return ResolvedChain{}, errors.New("network name is empty")
	}

	network, ok := s.cfg.Chains.Networks[networkName]
	if !ok {
		return ResolvedChain{}, errors.Wrapf(ErrUnknownNetwork, "%q", networkName)
	}
	return s.resolveFromNetworkConfig(networkName, network)
}

func (s *QAChainService) resolveFromNetworkConfig(networkName string, network NetworkConfig) (ResolvedChain, error) {
	// pick RPC by preferred name; otherwise first
	var selectedRPC *RPC

	if preferred := strings.TrimSpace(s.cfg.PreferredRPCName); preferred != "" {
		for i := range network.RPCs {
			if strings.EqualFold(strings.TrimSpace(network.RPCs[i].Name), preferred) {
				selectedRPC = &network.RPCs[i]
				break
			}
		}
	}
	if selectedRPC == nil {
		if len(network.RPCs) == 0 {
			return ResolvedChain{}, fmt.Errorf("network %q has no RPCs configured", networkName)
		}
		selectedRPC = &network.RPCs[0]
	}

	if strings.TrimSpace(selectedRPC.URL) == "" {
		return ResolvedChain{}, fmt.Errorf("network %q rpc %q has empty url", networkName, selectedRPC.Name)
	}

	return ResolvedChain{
		NetworkName: networkName,
		DisplayName: network.DisplayName,
		ChainID:     network.ChainID,
		ChainIDHex:  network.ChainIDHex,
		EntryPoint:  network.EntryPoint,
		Explorer:    network.Explorer,
		RPCName:     selectedRPC.Name,
		URL:         strings.TrimSpace(selectedRPC.URL),
		WSS:         strings.TrimSpace(selectedRPC.WSS),
	}, nil
}
