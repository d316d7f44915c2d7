// setup.go
package quantum_wallet_demo

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/cmd/quantum-wallet-demo/config"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/helpers"
	clienthttp "github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/http"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

const shutdownTimeout = 5 * time.Second

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type RunOptions struct {
	// Config skips config.Load when set.
	Config *config.Config

	// TerminalLogin prompts for credentials before the browser opens.
	TerminalLogin bool
	Email         string
	Prompter      *helpers.Prompter

	Deps ProviderDeps
}

// Login is the part of the page the terminal flow drives.
type Login interface {
	Login(ctx context.Context, creds session.Credentials) (string, error)
}

func Run(ctx context.Context, build BuildInfo, opts RunOptions) error {
	log.Info("quantum-wallet-demo",
		"version", build.Version,
		"commit", build.Commit,
		"build_date", build.BuildDate,
	)

	// ---- Config
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		cfg = loaded
	}
	cfg.Normalize()
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	accessLogger, err := clienthttp.NewAccessLogger(cfg.ClientSettings.LogLevel, cfg.ClientSettings.LogJSON)
	if err != nil {
		return err
	}
	defer func() { _ = accessLogger.Sync() }()

	// ---- Providers
	providersCfg, err := ProvidersConfigFrom(cfg)
	if err != nil {
		return err
	}
	providers, err := Compose(ctx, providersCfg, opts.Deps)
	if err != nil {
		return err
	}
	defer providers.Close()

	// ---- Page
	hub := clienthttp.NewHub()
	ctrl, err := view.NewController(view.Options{
		Session:    providers.Session,
		Connector:  providers.Connector,
		Chains:     providers.Chains,
		Balances:   providers.Balances,
		Clipboard:  hub,
		Tokens:     providers.Tokens,
		Appearance: providersCfg.App.Appearance,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()
	providers.Balances.OnChange(ctrl.BalancesChanged)

	// ---- HTTP server
	server, err := clienthttp.NewServer(clienthttp.Config{
		Addr:           cfg.ListenAddr(),
		AllowedOrigins: cfg.ClientSettings.AllowedOrigins,
		Version:        build.Version,
		RateLimit:      cfg.ClientSettings.RateLimit,
		RateBurst:      cfg.ClientSettings.RateBurst,
		Logger:         accessLogger,
	}, ctrl, providers.Session, hub)
	if err != nil {
		return err
	}

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Run(serveCtx) }()

	if opts.TerminalLogin {
		prompter := opts.Prompter
		if prompter == nil {
			prompter = helpers.NewTerminalPrompter()
		}
		email := opts.Email
		if email == "" {
			email = cfg.ClientSettings.Email
		}
		if err := TerminalLogin(ctx, ctrl, prompter, email, cfg.ListenAddr()); err != nil {
			log.Error("terminal login failed", "error", err)
		}
	}

	// ---- graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error", "error", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("wallet demo shutdown failed", "error", shutdownErr)
	} else {
		log.Info("wallet demo gracefully stopped")
	}
	return nil
}

// TerminalLogin signs in from the terminal and prints a page URL carrying the session token.
func TerminalLogin(ctx context.Context, page Login, prompter *helpers.Prompter, defaultEmail, addr string) error {
	email, password, err := prompter.PromptCredentials(defaultEmail)
	if err != nil {
		return err
	}
	defer helpers.ZeroBytes(password)

	token, err := page.Login(ctx, session.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(prompter.Out, "Signed in as %s. Open http://%s/#token=%s\n", email, addr, token)
	return nil
}

// ProvidersConfigFrom maps a validated config onto the provider tree.
func ProvidersConfigFrom(cfg *config.Config) (ProvidersConfig, error) {
	createOnLogin, err := session.ParseCreateOnLogin(cfg.App.CreateOnLogin)
	if err != nil {
		return ProvidersConfig{}, err
	}
	salt, err := cfg.SaltInt()
	if err != nil {
		return ProvidersConfig{}, err
	}
	dataDir, err := cfg.DataDir()
	if err != nil {
		return ProvidersConfig{}, err
	}

	var factory common.Address
	if cfg.SmartWallet.Factory != "" {
		factory = common.HexToAddress(cfg.SmartWallet.Factory)
	}
	var secret []byte
	if cfg.Session.Secret != "" {
		secret = []byte(cfg.Session.Secret)
	}

	return ProvidersConfig{
		App: AppConfig{
			AppID: cfg.App.AppID,
			Appearance: view.Appearance{
				Theme:       cfg.App.Theme,
				AccentColor: cfg.App.AccentColor,
			},
			DefaultChain:    cfg.App.DefaultChain,
			SupportedChains: append([]string(nil), cfg.App.SupportedChains...),
			CreateOnLogin:   createOnLogin,
		},
		Chains:             cfg.Networks,
		PreferredRPCName:   cfg.Networks.ActiveRPC,
		DataDir:            dataDir,
		SessionSecret:      secret,
		SessionTTL:         cfg.TokenTTL(),
		SmartWalletFactory: factory,
		SmartWalletSalt:    salt,
		BundlerURL:         cfg.SmartWallet.BundlerURL,
		ReceiptTimeout:     cfg.ReceiptTimeout(),
		USDC:               cfg.Balances.USDC,
		BalanceInterval:    cfg.BalanceInterval(),
	}, nil
}
