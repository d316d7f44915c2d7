package http

import (
	"context"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

// Page is the view controller as seen by the HTTP layer.
type Page interface {
	State() view.State
	OnChange(fn func()) func()

	Login(ctx context.Context, creds session.Credentials) (string, error)
	Logout(ctx context.Context) error

	UpdateForm(u view.FormUpdate)
	ToggleChain(ctx context.Context)
	SignMessage(ctx context.Context) error
	ExecTransaction(ctx context.Context) error
	CopyWalletAddress(ctx context.Context, kind assets.Kind) error
	CopySignedMessage(ctx context.Context) error
	ToggleSignedMessageExpanded()
}

type TokenVerifier interface {
	VerifyToken(token string) (*session.Claims, error)
}

type extensionResponse struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	State view.State `json:"state"`
}

type formRequest struct {
	Message   *string `json:"message,omitempty"`
	Amount    *string `json:"amount,omitempty"`
	Recipient *string `json:"recipient,omitempty"`
}

type agentStatusResponse struct {
	Agent   string     `json:"agent"`
	Version string     `json:"version,omitempty"`
	Clients int        `json:"clients"`
	State   view.State `json:"state"`
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type clipboardPayload struct {
	Text string `json:"text"`
}
