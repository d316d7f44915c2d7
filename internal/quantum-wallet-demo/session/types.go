package session

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotReady             = errors.New("session provider not ready")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrWeakPassword         = errors.New("password does not meet requirements")
)

// CreateOnLogin decides when an embedded wallet is provisioned on login.
type CreateOnLogin string

const (
	CreateAllUsers            CreateOnLogin = "all-users"
	CreateUsersWithoutWallets CreateOnLogin = "users-without-wallets"
	CreateOff                 CreateOnLogin = "off"
)

func ParseCreateOnLogin(s string) (CreateOnLogin, error) {
	switch v := CreateOnLogin(strings.ToLower(strings.TrimSpace(s))); v {
	case CreateAllUsers, CreateUsersWithoutWallets, CreateOff:
		return v, nil
	case "":
		return CreateUsersWithoutWallets, nil
	default:
		return "", errors.Newf("invalid createOnLogin %q (allowed: all-users, users-without-wallets, off)", s)
	}
}

type Credentials struct {
	Email    string
	Password []byte
}

// User is the authenticated account as seen by the UI.
type User struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	EmbeddedAddress common.Address `json:"embeddedAddress"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// HasEmbeddedWallet reports whether an embedded wallet is linked to the user.
func (u *User) HasEmbeddedWallet() bool {
	return u != nil && u.EmbeddedAddress != (common.Address{})
}

type State struct {
	Ready         bool  `json:"ready"`
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type EventKind string

const (
	EventLogin          EventKind = "login"
	EventLogout         EventKind = "logout"
	EventAccountChanged EventKind = "account_changed"
)

type Event struct {
	Kind EventKind
	User *User
}

// Claims are carried by the session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
