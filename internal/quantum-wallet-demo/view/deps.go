package view

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/smartwallet"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
)

//go:generate mockgen -destination=../mocks/mock_view.go -package=mocks github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view SessionProvider,SmartWallet,SmartWalletConnector,ChainSwitcher,BalanceSource,Clipboard,TokenTable

type SessionProvider interface {
	State() session.State
	Login(ctx context.Context, creds session.Credentials) (string, error)
	Logout(ctx context.Context) error
	Subscribe(fn func(session.Event)) func()
	Wallet() wtypes.Wallet
}

type SmartWallet interface {
	Address() common.Address
	SignMessage(ctx context.Context, text string) (string, error)
	SendTransaction(ctx context.Context, call smartwallet.Call) (common.Hash, error)
}

type SmartWalletConnector interface {
	Connect(ctx context.Context, owner wtypes.Wallet) (SmartWallet, error)
}

type ChainSwitcher interface {
	ActiveNetwork() (string, error)
	Toggle(ctx context.Context) (string, error)
	ResolveNetworkByName(networkName string) (chains.ResolvedChain, error)
}

type BalanceSource interface {
	Snapshot(kind assets.Kind) assets.Snapshot
	Track(embedded, smart common.Address)
	Invalidate()
}

type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

type TokenTable interface {
	USDCFor(network string) (assets.Token, error)
}
