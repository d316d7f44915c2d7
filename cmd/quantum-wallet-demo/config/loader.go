package config

import (
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
)

const (
	EnvAppID             = "QA_APP_ID"
	EnvRPCBase           = "QA_RPC_BASE"
	EnvRPCBaseSepolia    = "QA_RPC_BASE_SEPOLIA"
	EnvBundlerURL        = "QA_BUNDLER_URL"
	EnvSessionSecret     = "QA_SESSION_SECRET"
	minSessionSecretSize = 32
)

type AppSettings struct {
	AppID           string   `mapstructure:"appId"`
	Theme           string   `mapstructure:"theme"`
	AccentColor     string   `mapstructure:"accentColor"`
	DefaultChain    string   `mapstructure:"defaultChain"`
	SupportedChains []string `mapstructure:"supportedChains"`
	CreateOnLogin   string   `mapstructure:"createOnLogin"`
}

type ClientSettings struct {
	LocalHost      string   `mapstructure:"localHost"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	Email          string   `mapstructure:"email"`
	DataDir        string   `mapstructure:"dataDir"`
	RateLimit      float64  `mapstructure:"rateLimit"`
	RateBurst      int      `mapstructure:"rateBurst"`
	LogLevel       string   `mapstructure:"logLevel"`
	LogJSON        bool     `mapstructure:"logJson"`
}

type SessionSettings struct {
	Secret          string `mapstructure:"secret"`
	TokenTTLMinutes int    `mapstructure:"tokenTtlMinutes"`
}

type SmartWalletSettings struct {
	Factory               string `mapstructure:"factory"`
	Salt                  string `mapstructure:"salt"`
	BundlerURL            string `mapstructure:"bundlerUrl"`
	ReceiptTimeoutSeconds int    `mapstructure:"receiptTimeoutSeconds"`
}

type BalanceSettings struct {
	IntervalSeconds int               `mapstructure:"intervalSeconds"`
	USDC            map[string]string `mapstructure:"usdc"`
}

type Config struct {
	App            AppSettings             `mapstructure:"App"`
	ClientSettings ClientSettings          `mapstructure:"ClientSettings"`
	Session        SessionSettings         `mapstructure:"Session"`
	SmartWallet    SmartWalletSettings     `mapstructure:"SmartWallet"`
	Balances       BalanceSettings         `mapstructure:"Balances"`
	Networks       *chains.AllChainsConfig `mapstructure:"Networks"`
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	return utilsconfig.ParseConfigWithEmbedded[Config](paths, EmbeddedConfigYAML)
}

// ApplyEnv overlays QA_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAppID)); v != "" {
		c.App.AppID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBundlerURL)); v != "" {
		c.SmartWallet.BundlerURL = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		c.Session.Secret = v
	}
	for network, env := range map[string]string{
		constants.NetworkBase:        EnvRPCBase,
		constants.NetworkBaseSepolia: EnvRPCBaseSepolia,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			if err := c.InjectRPCURL(network, v); err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
		}
	}
	return nil
}

// InjectRPCURL makes url the first RPC of network.
func (c *Config) InjectRPCURL(network, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("rpc url is empty")
	}
	if c.Networks == nil || c.Networks.Networks == nil {
		return fmt.Errorf("no networks configured")
	}
	key := strings.ToLower(strings.TrimSpace(network))
	nc, ok := c.Networks.Networks[key]
	if !ok {
		return fmt.Errorf("unknown network %q", network)
	}

	if len(nc.RPCs) == 0 {
		nc.RPCs = []chains.RPC{{Name: "Env", URL: url}}
	} else {
		nc.RPCs[0].Name = "Env"
		nc.RPCs[0].URL = url
	}

	// map value copy
	c.Networks.Networks[key] = nc
	return nil
}

func (c *Config) Normalize() {
	if c.Networks == nil {
		c.Networks = &chains.AllChainsConfig{}
	}
	c.Networks.Normalize()

	c.App.AppID = strings.TrimSpace(c.App.AppID)
	c.App.DefaultChain = strings.ToLower(strings.TrimSpace(c.App.DefaultChain))
	if c.App.DefaultChain == "" {
		c.App.DefaultChain = c.Networks.ActiveNetwork
	}
	c.Networks.ActiveNetwork = c.App.DefaultChain

	supported := make([]string, 0, len(c.App.SupportedChains))
	seen := map[string]struct{}{}
	for _, s := range c.App.SupportedChains {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		supported = append(supported, s)
	}
	c.App.SupportedChains = supported

	if c.ClientSettings.LocalHost == "" {
		c.ClientSettings.LocalHost = "127.0.0.1"
	}
	if c.ClientSettings.Port == "" {
		c.ClientSettings.Port = "6137"
	}
	if c.Session.TokenTTLMinutes <= 0 {
		c.Session.TokenTTLMinutes = 12 * 60
	}
	if c.Balances.IntervalSeconds <= 0 {
		c.Balances.IntervalSeconds = 15
	}
	if strings.TrimSpace(c.SmartWallet.Salt) == "" {
		c.SmartWallet.Salt = "0"
	}

	usdc := make(map[string]string, len(c.Balances.USDC))
	for k, v := range c.Balances.USDC {
		usdc[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	c.Balances.USDC = usdc
}

func (c *Config) Validate() error {
	if _, err := securefile.QaEnvFolder(); err != nil {
		return err
	}
	if c.App.AppID == "" {
		return errors.New("App.appId is required")
	}
	if _, err := session.ParseCreateOnLogin(c.App.CreateOnLogin); err != nil {
		return err
	}
	if len(c.App.SupportedChains) == 0 {
		return errors.New("App.supportedChains is empty")
	}
	if !c.supports(c.App.DefaultChain) {
		return fmt.Errorf("default chain %q is not in supportedChains %v", c.App.DefaultChain, c.App.SupportedChains)
	}
	for _, name := range c.App.SupportedChains {
		if _, ok := c.Networks.Networks[name]; !ok {
			return fmt.Errorf("supported chain %q has no network config", name)
		}
		if _, ok := c.Balances.USDC[name]; !ok {
			return fmt.Errorf("supported chain %q has no USDC address", name)
		}
	}
	for name, addr := range c.Balances.USDC {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("Balances.usdc[%q] invalid address %q", name, addr)
		}
	}

	if c.SmartWallet.Factory != "" && !common.IsHexAddress(c.SmartWallet.Factory) {
		return fmt.Errorf("SmartWallet.factory invalid address %q", c.SmartWallet.Factory)
	}
	if _, err := c.SaltInt(); err != nil {
		return err
	}

	if ip := net.ParseIP(c.ClientSettings.LocalHost); c.ClientSettings.LocalHost != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("ClientSettings.localHost %q must be a loopback address", c.ClientSettings.LocalHost)
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < minSessionSecretSize {
		return fmt.Errorf("session secret must be at least %d bytes", minSessionSecretSize)
	}
	return nil
}

func (c *Config) supports(name string) bool {
	for _, s := range c.App.SupportedChains {
		if s == name {
			return true
		}
	}
	return false
}

func (c *Config) SaltInt() (*big.Int, error) {
	salt, ok := new(big.Int).SetString(strings.TrimSpace(c.SmartWallet.Salt), 0)
	if !ok || salt.Sign() < 0 {
		return nil, fmt.Errorf("SmartWallet.salt invalid %q", c.SmartWallet.Salt)
	}
	return salt, nil
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ClientSettings.LocalHost, c.ClientSettings.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Session.TokenTTLMinutes) * time.Minute
}

func (c *Config) BalanceInterval() time.Duration {
	return time.Duration(c.Balances.IntervalSeconds) * time.Second
}

func (c *Config) ReceiptTimeout() time.Duration {
	return time.Duration(c.SmartWallet.ReceiptTimeoutSeconds) * time.Second
}

func (c *Config) DataDir() (string, error) {
	if d := strings.TrimSpace(c.ClientSettings.DataDir); d != "" {
		return d, nil
	}
	return securefile.DataDir(constants.AppName)
}
