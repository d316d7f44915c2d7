package chains_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
)

func testChains() *chains.AllChainsConfig {
	cfg := &chains.AllChainsConfig{
		ActiveNetwork: "Base-Sepolia",
		Networks: map[string]chains.NetworkConfig{
			"base": {
				DisplayName: "Base",
				ChainID:     constants.ChainIDBase,
				RPCs: []chains.RPC{
					{Name: "public", URL: "https://mainnet.base.org"},
					{Name: "backup", URL: "https://base.backup.example"},
				},
			},
			"base-sepolia": {
				DisplayName: "Base Sepolia",
				ChainID:     constants.ChainIDBaseSepolia,
				RPCs:        []chains.RPC{{Name: "public", URL: "https://sepolia.base.org"}},
			},
		},
	}
	cfg.Normalize()
	return cfg
}

type dialRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (d *dialRecorder) dial(_ context.Context, chain chains.ResolvedChain) (*chains.ChainClients, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.calls == nil {
		d.calls = map[string]int{}
	}
	d.calls[chain.NetworkName]++
	return &chains.ChainClients{}, nil
}

func newService(t *testing.T, cfg *chains.AllChainsConfig, rec *dialRecorder) *chains.QAChainService {
	t.Helper()
	svc, err := chains.NewQAChainService(context.Background(), chains.ChainConfig{
		Chains:               cfg,
		DefaultActiveNetwork: cfg.ActiveNetwork,
		Dial:                 rec.dial,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNormalize(t *testing.T) {
	cfg := testChains()

	assert.Equal(t, "base-sepolia", cfg.ActiveNetwork)
	assert.Equal(t, "0x2105", cfg.Networks["base"].ChainIDHex)
	assert.Equal(t, "0x14a34", cfg.Networks["base-sepolia"].ChainIDHex)
	assert.Equal(t, "base", cfg.Networks["base"].Name)
}

func TestNewQAChainService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  chains.ChainConfig
	}{
		{name: "nil chains", cfg: chains.ChainConfig{DefaultActiveNetwork: "base"}},
		{name: "empty default", cfg: chains.ChainConfig{Chains: testChains()}},
		{name: "unknown default", cfg: chains.ChainConfig{Chains: testChains(), DefaultActiveNetwork: "optimism"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &dialRecorder{}
			tt.cfg.Dial = rec.dial
			_, err := chains.NewQAChainService(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestToggleTwiceReturnsToOriginal(t *testing.T) {
	for _, start := range []string{constants.NetworkBase, constants.NetworkBaseSepolia} {
		t.Run(start, func(t *testing.T) {
			cfg := testChains()
			cfg.ActiveNetwork = start
			svc := newService(t, cfg, &dialRecorder{})
			ctx := context.Background()

			first, err := svc.Toggle(ctx)
			require.NoError(t, err)
			assert.NotEqual(t, start, first)

			second, err := svc.Toggle(ctx)
			require.NoError(t, err)
			assert.Equal(t, start, second)

			active, err := svc.ActiveNetwork()
			require.NoError(t, err)
			assert.Equal(t, start, active)
		})
	}
}

func TestToggleNeedsTwoNetworks(t *testing.T) {
	cfg := testChains()
	cfg.Networks["optimism"] = chains.NetworkConfig{
		Name:    "optimism",
		ChainID: 10,
		RPCs:    []chains.RPC{{Name: "public", URL: "https://mainnet.optimism.io"}},
	}
	svc := newService(t, cfg, &dialRecorder{})

	_, err := svc.Toggle(context.Background())
	assert.ErrorIs(t, err, chains.ErrNotTogglable)
}

func TestSwitchChain_CachesClientsAndNotifies(t *testing.T) {
	rec := &dialRecorder{}
	svc := newService(t, testChains(), rec)
	ctx := context.Background()

	var seen []string
	svc.OnSwitch(func(rc chains.ResolvedChain) { seen = append(seen, rc.NetworkName) })

	require.NoError(t, svc.SwitchChain(ctx, "base-sepolia")) // already active
	require.NoError(t, svc.SwitchChain(ctx, "BASE"))
	require.NoError(t, svc.SwitchChain(ctx, "base-sepolia"))
	require.NoError(t, svc.SwitchChain(ctx, "base"))

	assert.Equal(t, []string{"base", "base-sepolia", "base"}, seen)
	assert.Equal(t, 1, rec.calls["base"])
	assert.Equal(t, 1, rec.calls["base-sepolia"])

	active, err := svc.ActiveChain()
	require.NoError(t, err)
	assert.Equal(t, constants.ChainIDBase, active.ChainID)
	assert.Equal(t, "Base", active.DisplayName)
}

func TestResolveNetwork(t *testing.T) {
	svc := newService(t, testChains(), &dialRecorder{})

	byName, err := svc.ResolveNetworkByName(" Base-Sepolia ")
	require.NoError(t, err)
	assert.Equal(t, "base-sepolia", byName.NetworkName)
	assert.Equal(t, "0x14a34", byName.ChainIDHex)

	_, err = svc.ResolveNetworkByName("mainnet")
	assert.ErrorIs(t, err, chains.ErrUnknownNetwork)
}

func TestResolvePrefersNamedRPC(t *testing.T) {
	cfg := testChains()
	svc, err := chains.NewQAChainService(context.Background(), chains.ChainConfig{
		Chains:               cfg,
		DefaultActiveNetwork: "base",
		PreferredRPCName:     "BACKUP",
		Dial:                 (&dialRecorder{}).dial,
	})
	require.NoError(t, err)

	rc, err := svc.ResolveNetworkByName("base")
	require.NoError(t, err)
	assert.Equal(t, "backup", rc.RPCName)
	assert.Equal(t, "https://base.backup.example", rc.URL)

	// networks without the preferred RPC fall back to the first one
	rc, err = svc.ResolveNetworkByName("base-sepolia")
	require.NoError(t, err)
	assert.Equal(t, "public", rc.RPCName)
}

func TestCloseClearsActive(t *testing.T) {
	svc := newService(t, testChains(), &dialRecorder{})
	require.NoError(t, svc.Close())

	_, err := svc.ActiveNetwork()
	assert.ErrorIs(t, err, chains.ErrNoActiveChain)
}
