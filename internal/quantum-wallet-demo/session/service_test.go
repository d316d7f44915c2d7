package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/securefile"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
)

var cheapKDF = securefile.KDFParams{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

func newService(t *testing.T, dir string, policy session.CreateOnLogin) *session.Service {
	t.Helper()
	s, err := session.New(session.Config{
		DataDir:       dir,
		Secret:        []byte("test-secret-test-secret-test-sec"),
		CreateOnLogin: policy,
		KDF:           cheapKDF,
	})
	require.NoError(t, err)
	return s
}

type eventRecorder struct {
	mu     sync.Mutex
	events []session.Event
}

func (r *eventRecorder) record(ev session.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) kinds() []session.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func creds(email, pw string) session.Credentials {
	return session.Credentials{Email: email, Password: []byte(pw)}
}

func TestLogin_SignUpCreatesWallet(t *testing.T) {
	s := newService(t, t.TempDir(), session.CreateUsersWithoutWallets)
	rec := &eventRecorder{}
	s.Subscribe(rec.record)

	st := s.State()
	assert.True(t, st.Ready)
	assert.False(t, st.Authenticated)
	assert.Nil(t, s.Wallet())

	token, err := s.Login(context.Background(), creds("Alice@Example.com ", "correct-horse"))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	st = s.State()
	require.True(t, st.Authenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@example.com", st.User.Email)
	assert.True(t, st.User.HasEmbeddedWallet())
	require.NotNil(t, s.Wallet())
	assert.Equal(t, st.User.EmbeddedAddress, s.Wallet().Address())

	assert.Equal(t, []session.EventKind{session.EventLogin, session.EventAccountChanged}, rec.kinds())

	claims, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, st.User.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLogin_ReturningUserUnlocksSameWallet(t *testing.T) {
	dir := t.TempDir()
	s := newService(t, dir, session.CreateUsersWithoutWallets)

	_, err := s.Login(context.Background(), creds("bob@example.com", "password-1"))
	require.NoError(t, err)
	first := s.State().User
	require.NoError(t, s.Logout(context.Background()))

	// a fresh process sees the persisted users index
	s2 := newService(t, dir, session.CreateUsersWithoutWallets)
	rec := &eventRecorder{}
	s2.Subscribe(rec.record)

	_, err = s2.Login(context.Background(), creds("bob@example.com", "wrong-password"))
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
	assert.False(t, s2.State().Authenticated)

	_, err = s2.Login(context.Background(), creds("BOB@example.com", "password-1"))
	require.NoError(t, err)
	second := s2.State().User
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.EmbeddedAddress, second.EmbeddedAddress)
	assert.Equal(t, []session.EventKind{session.EventLogin}, rec.kinds())
}

func TestLogin_Policies(t *testing.T) {
	tests := []struct {
		name       string
		policy     session.CreateOnLogin
		wantWallet bool
	}{
		{name: "all users", policy: session.CreateAllUsers, wantWallet: true},
		{name: "users without wallets", policy: session.CreateUsersWithoutWallets, wantWallet: true},
		{name: "off", policy: session.CreateOff, wantWallet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, t.TempDir(), tt.policy)
			_, err := s.Login(context.Background(), creds("carol@example.com", "password-1"))
			require.NoError(t, err)

			st := s.State()
			assert.True(t, st.Authenticated)
			assert.Equal(t, tt.wantWallet, st.User.HasEmbeddedWallet())
			assert.Equal(t, tt.wantWallet, s.Wallet() != nil)
		})
	}
}

func TestLogin_Rejects(t *testing.T) {
	s := newService(t, t.TempDir(), session.CreateOff)

	_, err := s.Login(context.Background(), creds("", "password-1"))
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	_, err = s.Login(context.Background(), creds("dave@example.com", "short"))
	assert.ErrorIs(t, err, session.ErrWeakPassword)
	assert.Contains(t, err.Error(), "at least 8 characters")

	_, err = s.Login(context.Background(), creds("dave@example.com", "password-1"))
	require.NoError(t, err)
	_, err = s.Login(context.Background(), creds("dave@example.com", "password-1"))
	assert.ErrorIs(t, err, session.ErrAlreadyAuthenticated)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Logout(context.Background()))
	_, err = s.Login(ctx, creds("dave@example.com", "password-1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newService(t, t.TempDir(), session.CreateAllUsers)
	rec := &eventRecorder{}
	unsubscribe := s.Subscribe(rec.record)

	token, err := s.Login(context.Background(), creds("erin@example.com", "password-1"))
	require.NoError(t, err)
	wallet := s.Wallet()
	require.NotNil(t, wallet)

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.State().Authenticated)
	assert.Nil(t, s.State().User)
	assert.Nil(t, s.Wallet())

	_, err = wallet.ExportPrivateKey(context.Background())
	assert.Error(t, err, "logout forgets key material")

	_, err = s.VerifyToken(token)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	// logging out twice is harmless and silent
	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, session.EventLogout, rec.kinds()[len(rec.kinds())-1])
	n := len(rec.kinds())

	unsubscribe()
	_, err = s.Login(context.Background(), creds("erin@example.com", "password-1"))
	require.NoError(t, err)
	assert.Len(t, rec.kinds(), n)
}

func TestVerifyToken_RejectsForgedAndExpired(t *testing.T) {
	s := newService(t, t.TempDir(), session.CreateOff)
	token, err := s.Login(context.Background(), creds("frank@example.com", "password-1"))
	require.NoError(t, err)
	claims, err := s.VerifyToken(token)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = s.VerifyToken(forged)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	expired := *claims
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("test-secret-test-secret-test-sec"))
	require.NoError(t, err)
	_, err = s.VerifyToken(stale)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.VerifyToken(none)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	_, err = s.VerifyToken("garbage")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestLogin_StateNotBlockedByKeyDerivation(t *testing.T) {
	s, err := session.New(session.Config{
		DataDir:       t.TempDir(),
		Secret:        []byte("test-secret-test-secret-test-sec"),
		CreateOnLogin: session.CreateAllUsers,
		KDF:           securefile.KDFParams{Time: 3, Memory: 64 * 1024, Threads: 1, KeyLen: 32},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), creds("gina@example.com", "password-1"))
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)

	st := s.State()
	select {
	case err := <-done:
		t.Fatalf("login finished before state was read (err=%v)", err)
	default:
	}
	assert.True(t, st.Ready)
	assert.False(t, st.Authenticated)

	require.NoError(t, <-done)
	assert.True(t, s.State().Authenticated)
	_, err = s.Login(context.Background(), creds("gina@example.com", "password-1"))
	assert.ErrorIs(t, err, session.ErrAlreadyAuthenticated)
}

func TestParseCreateOnLogin(t *testing.T) {
	tests := []struct {
		in      string
		want    session.CreateOnLogin
		wantErr bool
	}{
		{in: "all-users", want: session.CreateAllUsers},
		{in: " Users-Without-Wallets ", want: session.CreateUsersWithoutWallets},
		{in: "off", want: session.CreateOff},
		{in: "", want: session.CreateUsersWithoutWallets},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := session.ParseCreateOnLogin(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
