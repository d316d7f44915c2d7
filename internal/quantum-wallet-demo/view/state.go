package view

import (
	"math/big"
	"strings"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/utils"
)

type Appearance struct {
	Theme       string `json:"theme"`
	AccentColor string `json:"accentColor"`
}

// WalletView is one wallet card on the page.
type WalletView struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Copied  bool   `json:"copied"`
}

// State is a point-in-time copy of everything the page renders.
type State struct {
	Ready         bool       `json:"ready"`
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Appearance    Appearance `json:"appearance"`

	Network     string `json:"network"`
	DisplayName string `json:"displayName"`
	ChainID     uint64 `json:"chainId"`
	Explorer    string `json:"explorer,omitempty"`

	Embedded *WalletView `json:"embedded,omitempty"`
	Smart    *WalletView `json:"smart,omitempty"`

	Message   string `json:"message"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`

	Error   string `json:"error"`
	Loading bool   `json:"loading"`

	SignedMessage         string `json:"signedMessage"`
	SignedMessageDisplay  string `json:"signedMessageDisplay"`
	SignedMessageExpanded bool   `json:"signedMessageExpanded"`
	CopiedWallet          string `json:"copiedWallet"`
	CopiedSignedMessage   bool   `json:"copiedSignedMessage"`

	CanSign             bool   `json:"canSign"`
	CanSend             bool   `json:"canSend"`
	InsufficientBalance bool   `json:"insufficientBalance"`
	LastTxHash          string `json:"lastTxHash,omitempty"`
}

// BalanceDisplay renders "<eth> ETH" followed by ", <usdc> USDC"; values not yet loaded are left out.
func BalanceDisplay(s assets.Snapshot) string {
	var b strings.Builder
	if s.Native != nil {
		b.WriteString(utils.FormatEther(s.Native))
		b.WriteString(" ETH")
	}
	if s.Token != nil {
		b.WriteString(", ")
		b.WriteString(utils.FormatUnits(s.Token, constants.USDCDecimals))
		b.WriteString(" USDC")
	}
	return b.String()
}

// SignedMessagePreview truncates sig unless expanded.
func SignedMessagePreview(sig string, expanded bool) string {
	if sig == "" || expanded {
		return sig
	}
	runes := []rune(sig)
	if len(runes) > constants.SignedMessagePreview {
		runes = runes[:constants.SignedMessagePreview]
	}
	return string(runes) + "..."
}

func canSign(message string) bool {
	return strings.TrimSpace(message) != ""
}

// canSend mirrors the send button: both fields set, balance known, amount within balance.
func canSend(amount, recipient string, balance *big.Int, loading bool) bool {
	if amount == "" || recipient == "" || balance == nil || loading {
		return false
	}
	parsed, err := utils.ParseUnits(amount, constants.USDCDecimals)
	if err != nil {
		return false
	}
	return balance.Cmp(parsed) >= 0
}

// insufficient is true when a positive amount exceeds a known balance.
func insufficient(amount string, balance *big.Int) bool {
	if balance == nil {
		return false
	}
	parsed, err := utils.ParseUnits(amount, constants.USDCDecimals)
	if err != nil || parsed.Sign() <= 0 {
		return false
	}
	return balance.Cmp(parsed) < 0
}
