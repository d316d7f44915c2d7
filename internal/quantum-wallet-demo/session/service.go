package session

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/embedded"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/helpers"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
)

type Config struct {
	DataDir       string
	Secret        []byte
	TokenTTL      time.Duration
	CreateOnLogin CreateOnLogin

	// KDF is used for both the password verifier and sealing wallet files.
	KDF securefile.KDFParams
}

// Service is a local email/password auth provider with embedded wallet provisioning.
type Service struct {
	cfg     Config
	users   *userIndex
	wallets *embedded.Store

	// loginMu serializes logins and guards the users index and wallet store.
	loginMu sync.Mutex

	mu      sync.RWMutex
	ready   bool
	user    *User
	wallet  *embedded.Wallet
	tokenID string

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func New(cfg Config) (*Service, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("session: data dir is empty")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.CreateOnLogin == "" {
		cfg.CreateOnLogin = CreateUsersWithoutWallets
	}
	if cfg.KDF.KeyLen == 0 {
		cfg.KDF = securefile.DefaultKDF
	}
	if len(cfg.Secret) == 0 {
		cfg.Secret = make([]byte, 32)
		if _, err := rand.Read(cfg.Secret); err != nil {
			return nil, errors.Wrap(err, "session secret")
		}
		log.Warn("no session secret configured, tokens will not survive a restart")
	}

	users, err := loadUserIndex(cfg.DataDir, cfg.KDF)
	if err != nil {
		return nil, err
	}
	wallets := embedded.NewStore(cfg.DataDir)
	wallets.Opt.KDF = cfg.KDF

	s := &Service{
		cfg:     cfg,
		users:   users,
		wallets: wallets,
		subs:    map[int]func(Event){},
		ready:   true,
	}
	log.Info("session provider ready", "users", len(users.file.Users), "createOnLogin", string(cfg.CreateOnLogin))
	return s, nil
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Ready: s.ready, Authenticated: s.user != nil}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Wallet returns the unlocked embedded wallet, or nil.
func (s *Service) Wallet() wtypes.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil {
		return nil
	}
	return s.wallet
}

// Subscribe registers fn for session events. The returned func removes it.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Service) emit(ev Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Login authenticates creds, signing up unknown emails, and returns a session token.
// Password hashing and wallet unlock run outside s.mu so State stays responsive.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	s.mu.RLock()
	ready, busy := s.ready, s.user != nil
	s.mu.RUnlock()
	switch {
	case !ready:
		return "", ErrNotReady
	case busy:
		return "", ErrAlreadyAuthenticated
	}

	email := normalizeEmail(creds.Email)
	if email == "" || len(creds.Password) == 0 {
		return "", ErrInvalidCredentials
	}

	rec, known := s.users.lookup(email)
	if known {
		if !rec.verify(creds.Password) {
			log.Warn("login rejected", "email", email)
			return "", ErrInvalidCredentials
		}
	} else {
		if err := helpers.ValidatePassword(creds.Password); err != nil {
			return "", errors.Wrapf(ErrWeakPassword, "sign up: %s", err.Error())
		}
		var err error
		rec, err = s.users.newRecord(uuid.NewString(), email, creds.Password)
		if err != nil {
			return "", err
		}
		log.Info("signing up new user", "email", email, "user", rec.ID)
	}

	create := s.cfg.CreateOnLogin != CreateOff
	if s.cfg.CreateOnLogin == CreateUsersWithoutWallets && rec.WalletAddress != "" {
		create = false
	}
	wallet, created, err := s.wallets.Ensure(rec.ID, creds.Password, create)
	switch {
	case err == nil:
		rec.WalletAddress = wallet.Address().Hex()
	case errors.Is(err, embedded.ErrNoWallet):
		wallet = nil
	default:
		return "", errors.Wrap(err, "unlock embedded wallet")
	}
	forget := func() {
		if wallet != nil {
			wallet.Forget()
		}
	}

	s.users.put(rec)
	if err := s.users.save(); err != nil {
		forget()
		return "", err
	}

	tokenID := uuid.NewString()
	token, err := s.issueToken(rec, tokenID)
	if err != nil {
		forget()
		return "", err
	}

	user := &User{ID: rec.ID, Email: rec.Email, CreatedAt: rec.CreatedAt}
	if wallet != nil {
		user.EmbeddedAddress = wallet.Address()
	}

	s.mu.Lock()
	if s.user != nil {
		s.mu.Unlock()
		forget()
		return "", ErrAlreadyAuthenticated
	}
	s.user = user
	s.wallet = wallet
	s.tokenID = tokenID
	snapshot := *user
	s.mu.Unlock()

	log.Info("logged in", "user", rec.ID, "embedded", snapshot.EmbeddedAddress.Hex(), "walletCreated", created)
	s.emit(Event{Kind: EventLogin, User: &snapshot})
	if created {
		s.emit(Event{Kind: EventAccountChanged, User: &snapshot})
	}
	return token, nil
}

// Logout drops the unlocked wallet and revokes the current token. It is a no-op when logged out.
func (s *Service) Logout(ctx context.Context) error {
	_ = ctx

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	prev := *s.user
	if s.wallet != nil {
		s.wallet.Forget()
	}
	s.user = nil
	s.wallet = nil
	s.tokenID = ""
	s.mu.Unlock()

	log.Info("logged out", "user", prev.ID)
	s.emit(Event{Kind: EventLogout, User: &prev})
	return nil
}

func (s *Service) issueToken(rec userRecord, tokenID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: rec.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppName,
			Subject:   rec.ID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// VerifyToken checks the signature and that the token belongs to the current session.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(constants.AppName))
	if err != nil {
		return nil, errors.Wrapf(ErrNotAuthenticated, "verify session token: %s", err.Error())
	}
	if !parsed.Valid {
		return nil, ErrNotAuthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.tokenID == "" || claims.ID != s.tokenID || claims.Subject != s.user.ID {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}
