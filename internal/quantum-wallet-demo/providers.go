package quantum_wallet_demo

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/smartwallet"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

var ErrInvalidAppConfig = errors.New("invalid app config")

// AppConfig is the provider-level configuration shown to every page.
type AppConfig struct {
	AppID           string
	Appearance      view.Appearance
	DefaultChain    string
	SupportedChains []string
	CreateOnLogin   session.CreateOnLogin
}

type ProvidersConfig struct {
	App AppConfig

	Chains           *chains.AllChainsConfig
	PreferredRPCName string
	// HeaderCacheMillis enables the latest-header cache when > 0.
	HeaderCacheMillis int

	DataDir       string
	SessionSecret []byte
	SessionTTL    time.Duration

	SmartWalletFactory common.Address
	SmartWalletSalt    *big.Int
	BundlerURL         string
	ReceiptTimeout     time.Duration

	USDC            map[string]string
	BalanceInterval time.Duration
}

// ProviderDeps replaces network-facing constructors, mostly for tests. Zero values use the real ones.
type ProviderDeps struct {
	DialChain   chains.DialFunc
	DialBundler smartwallet.BundlerDialer
	KDF         securefile.KDFParams
}

// Providers is the composed context tree: session > smart wallet factory > balance cache > chain client.
type Providers struct {
	Session   *session.Service
	Factory   *smartwallet.Factory
	Connector view.SmartWalletConnector
	Balances  *assets.Poller
	Tokens    *assets.TokenTable
	Chains    *chains.QAChainService
	App       AppConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (a *AppConfig) normalize() {
	a.AppID = strings.TrimSpace(a.AppID)
	a.DefaultChain = strings.ToLower(strings.TrimSpace(a.DefaultChain))
	for i, s := range a.SupportedChains {
		a.SupportedChains[i] = strings.ToLower(strings.TrimSpace(s))
	}
}

func (a AppConfig) Validate() error {
	if a.AppID == "" {
		return errors.Mark(errors.New("app id is empty"), ErrInvalidAppConfig)
	}
	if len(a.SupportedChains) == 0 {
		return errors.Mark(errors.New("no supported chains"), ErrInvalidAppConfig)
	}
	for _, s := range a.SupportedChains {
		if s == a.DefaultChain {
			return nil
		}
	}
	return errors.Mark(errors.Newf("default chain %q is not supported %v", a.DefaultChain, a.SupportedChains), ErrInvalidAppConfig)
}

// supportedSubset keeps only the networks the app supports, so toggling flips between exactly those.
func supportedSubset(all *chains.AllChainsConfig, supported []string) (*chains.AllChainsConfig, error) {
	if all == nil {
		return nil, errors.Mark(errors.New("no chains configured"), ErrInvalidAppConfig)
	}
	out := &chains.AllChainsConfig{
		Networks:      make(map[string]chains.NetworkConfig, len(supported)),
		ActiveNetwork: all.ActiveNetwork,
		ActiveRPC:     all.ActiveRPC,
	}
	for _, name := range supported {
		n, ok := all.Networks[name]
		if !ok {
			return nil, errors.Mark(errors.Wrapf(chains.ErrUnknownNetwork, "supported chain %q", name), ErrInvalidAppConfig)
		}
		out.Networks[name] = n
	}
	return out, nil
}

// Compose builds every provider from cfg. On error nothing is left running.
func Compose(ctx context.Context, cfg ProvidersConfig, deps ProviderDeps) (_ *Providers, err error) {
	cfg.App.normalize()
	if err := cfg.App.Validate(); err != nil {
		return nil, err
	}
	if cfg.Chains != nil {
		cfg.Chains.Normalize()
	}
	chainCfg, err := supportedSubset(cfg.Chains, cfg.App.SupportedChains)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p := &Providers{App: cfg.App, cancel: cancel}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	// chain client
	p.Chains, err = chains.NewQAChainService(runCtx, chains.ChainConfig{
		Chains:               chainCfg,
		DefaultActiveNetwork: cfg.App.DefaultChain,
		PreferredRPCName:     cfg.PreferredRPCName,
		DurationBetweenGetLatestHeaderRequestsMilliseconds: cfg.HeaderCacheMillis,
		Dial: deps.DialChain,
	})
	if err != nil {
		return nil, errors.Wrap(err, "chain client")
	}

	// query cache
	usdc := cfg.USDC
	if len(usdc) == 0 {
		usdc = assets.DefaultUSDCAddresses()
	}
	p.Tokens, err = assets.NewTokenTable(usdc)
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.App.SupportedChains {
		if _, err = p.Tokens.USDCFor(name); err != nil {
			return nil, errors.Mark(err, ErrInvalidAppConfig)
		}
	}
	manager, err := assets.NewManager(p.Chains)
	if err != nil {
		return nil, err
	}
	p.Balances = assets.NewPoller(manager, p.Chains, p.Tokens, assets.PollerConfig{Interval: cfg.BalanceInterval})
	p.Chains.OnSwitch(func(chain chains.ResolvedChain) {
		log.Info("active chain changed", "network", chain.NetworkName)
		p.Balances.Invalidate()
	})

	// smart wallet factory
	var store *smartwallet.Store
	if cfg.DataDir != "" {
		store = smartwallet.NewStore(cfg.DataDir)
	}
	p.Factory, err = smartwallet.NewFactory(p.Chains, smartwallet.FactoryConfig{
		Factory:        cfg.SmartWalletFactory,
		Salt:           cfg.SmartWalletSalt,
		BundlerURL:     cfg.BundlerURL,
		ReceiptTimeout: cfg.ReceiptTimeout,
		Store:          store,
		Dial:           deps.DialBundler,
	})
	if err != nil {
		return nil, err
	}
	p.Connector = connector{factory: p.Factory}

	// auth
	p.Session, err = session.New(session.Config{
		DataDir:       cfg.DataDir,
		Secret:        cfg.SessionSecret,
		TokenTTL:      cfg.SessionTTL,
		CreateOnLogin: cfg.App.CreateOnLogin,
		KDF:           deps.KDF,
	})
	if err != nil {
		return nil, errors.Wrap(err, "session provider")
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Balances.Run(runCtx)
	}()

	log.Info("providers ready",
		"appId", cfg.App.AppID,
		"network", cfg.App.DefaultChain,
		"supported", strings.Join(cfg.App.SupportedChains, ","),
		"bundler", cfg.BundlerURL != "",
	)
	return p, nil
}

// Close tears the tree down from the outside in. It is safe to call more than once.
func (p *Providers) Close() {
	p.closeOnce.Do(func() {
		if p.Session != nil {
			if err := p.Session.Logout(context.Background()); err != nil {
				log.Warn("logout on close failed", "error", err)
			}
		}
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		if p.Chains != nil {
			if err := p.Chains.Close(); err != nil {
				log.Error("failed to close chain clients", "error", err)
			}
		}
	})
}

// connector narrows *smartwallet.Factory to the view's connector interface.
type connector struct {
	factory *smartwallet.Factory
}

func (c connector) Connect(ctx context.Context, owner wtypes.Wallet) (view.SmartWallet, error) {
	client, err := c.factory.Connect(ctx, owner)
	if err != nil {
		return nil, err
	}
	return client, nil
}
