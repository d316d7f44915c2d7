package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

const goodToken = "good-token"

type MockPage struct {
	mock.Mock
}

func (m *MockPage) State() view.State {
	return m.Called().Get(0).(view.State)
}

func (m *MockPage) OnChange(fn func()) func() {
	return m.Called(fn).Get(0).(func())
}

func (m *MockPage) Login(ctx context.Context, creds session.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPage) UpdateForm(u view.FormUpdate) {
	m.Called(u)
}

func (m *MockPage) ToggleChain(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockPage) SignMessage(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPage) ExecTransaction(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPage) CopyWalletAddress(ctx context.Context, kind assets.Kind) error {
	return m.Called(ctx, kind).Error(0)
}

func (m *MockPage) CopySignedMessage(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPage) ToggleSignedMessageExpanded() {
	m.Called()
}

type staticVerifier struct{}

func (staticVerifier) VerifyToken(token string) (*session.Claims, error) {
	if token != goodToken {
		return nil, session.ErrNotAuthenticated
	}
	claims := &session.Claims{Email: "ada@example.com"}
	claims.Subject = "user-1"
	return claims, nil
}

var loggedInState = view.State{
	Ready:         true,
	Authenticated: true,
	Email:         "ada@example.com",
	Network:       "base-sepolia",
	ChainID:       84532,
	Embedded:      &view.WalletView{Address: "0x00000000000000000000000000000000000000e1"},
	Smart:         &view.WalletView{Address: "0x00000000000000000000000000000000000000a1"},
	Amount:        "5",
}

type testServer struct {
	srv  *Server
	page *MockPage
	hub  *Hub

	onChange func()
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{page: &MockPage{}, hub: NewHub()}
	ts.page.On("OnChange", mock.Anything).Run(func(args mock.Arguments) {
		ts.onChange = args.Get(0).(func())
	}).Return(func() {})
	ts.page.On("State").Return(loggedInState).Maybe()

	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	srv, err := NewServer(cfg, ts.page, staticVerifier{}, ts.hub)
	require.NoError(t, err)
	ts.srv = srv
	t.Cleanup(ts.hub.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, extensionResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			var err error
			raw, err = json.Marshal(b)
			require.NoError(t, err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Host = "127.0.0.1:6137"
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)

	var resp extensionResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestNewServer_RejectsNonLoopbackAddr(t *testing.T) {
	for _, addr := range []string{"0.0.0.0:6137", "192.168.1.4:80", "nonsense"} {
		_, err := NewServer(Config{Addr: addr}, &MockPage{}, staticVerifier{}, NewHub())
		assert.Error(t, err, addr)
	}
}

func TestStatus_IsPublicAndRedacted(t *testing.T) {
	ts := newTestServer(t, Config{Version: "v1.2.3"})

	w, resp := ts.do(t, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.OK)
	assert.Len(t, w.Header().Get(CorrelationIDHeader), 36)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "quantum-wallet-demo", data["agent"])
	assert.Equal(t, "v1.2.3", data["version"])
	state := data["state"].(map[string]any)
	assert.Equal(t, true, state["authenticated"])
	assert.Equal(t, "base-sepolia", state["network"])
	assert.NotContains(t, state, "email")
	assert.NotContains(t, state, "smart")
	assert.Equal(t, "", state["amount"])
}

func TestCorrelationID_Preserved(t *testing.T) {
	ts := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Host = "localhost:6137"
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestLoopbackGuard(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		remote string
		host   string
	}{
		{name: "remote peer", remote: "10.0.0.2:5555", host: "127.0.0.1:6137"},
		{name: "foreign host header", remote: "127.0.0.1:5555", host: "wallet.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			req.RemoteAddr = tt.remote
			req.Host = tt.host
			w := httptest.NewRecorder()
			ts.srv.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "missing", token: "", want: http.StatusUnauthorized},
		{name: "invalid", token: "forged", want: http.StatusUnauthorized},
		{name: "valid", token: goodToken, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodGet, "/api/state", tt.token, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want == http.StatusOK, resp.OK)
			if tt.want == http.StatusOK {
				assert.Equal(t, "ada@example.com", resp.Data.(map[string]any)["email"])
			} else {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.page.On("Login", mock.Anything, mock.MatchedBy(func(c session.Credentials) bool {
		return c.Email == "ada@example.com" && string(c.Password) == "Correct-Horse-9"
	})).Return("issued-token", nil).Once()

	w, resp := ts.do(t, http.MethodPost, "/api/session/login", "", map[string]string{
		"email": "ada@example.com", "password": "Correct-Horse-9",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "issued-token", data["token"])
	assert.Equal(t, true, data["state"].(map[string]any)["authenticated"])
	ts.page.AssertExpectations(t)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name string
		body any
		err  error
		want int
	}{
		{name: "bad credentials", body: map[string]string{"email": "a@b.c", "password": "x"}, err: session.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "already logged in", body: map[string]string{"email": "a@b.c", "password": "x"}, err: session.ErrAlreadyAuthenticated, want: http.StatusConflict},
		{name: "weak password", body: map[string]string{"email": "a@b.c", "password": "x"}, err: errors.Mark(errors.New("too short"), session.ErrWeakPassword), want: http.StatusBadRequest},
		{name: "not ready", body: map[string]string{"email": "a@b.c", "password": "x"}, err: view.ErrNotReady, want: http.StatusServiceUnavailable},
		{name: "unknown field", body: `{"email":"a@b.c","password":"x","admin":true}`, want: http.StatusBadRequest},
		{name: "not json", body: `email=a`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{})
			if tt.err != nil {
				ts.page.On("Login", mock.Anything, mock.Anything).Return("", tt.err).Once()
			}
			w, resp := ts.do(t, http.MethodPost, "/api/session/login", "", tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.False(t, resp.OK)
			assert.NotEmpty(t, resp.Error)
			if tt.err == nil {
				ts.page.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.page.On("Logout", mock.Anything).Return(nil).Once()

	w, resp := ts.do(t, http.MethodPost, "/api/session/logout", goodToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.OK)
	ts.page.AssertExpectations(t)
}

func TestForm_PartialUpdate(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.page.On("UpdateForm", mock.MatchedBy(func(u view.FormUpdate) bool {
		return u.Message == nil && u.Recipient == nil && u.Amount != nil && *u.Amount == "5"
	})).Return().Once()

	w, resp := ts.do(t, http.MethodPut, "/api/form", goodToken, map[string]string{"amount": "5"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.OK)
	ts.page.AssertExpectations(t)
}

func TestActions(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		setup   func(p *MockPage)
		want    int
		wantErr string
	}{
		{
			name: "toggle chain", method: http.MethodPost, path: "/api/chain/toggle",
			setup: func(p *MockPage) { p.On("ToggleChain", mock.Anything).Return().Once() },
			want:  http.StatusOK,
		},
		{
			name: "sign", method: http.MethodPost, path: "/api/sign",
			setup: func(p *MockPage) { p.On("SignMessage", mock.Anything).Return(nil).Once() },
			want:  http.StatusOK,
		},
		{
			name: "sign empty message", method: http.MethodPost, path: "/api/sign",
			setup:   func(p *MockPage) { p.On("SignMessage", mock.Anything).Return(view.ErrNothingToSign).Once() },
			want:    http.StatusBadRequest,
			wantErr: view.ErrNothingToSign.Error(),
		},
		{
			name: "transfer", method: http.MethodPost, path: "/api/transfer",
			setup: func(p *MockPage) { p.On("ExecTransaction", mock.Anything).Return(nil).Once() },
			want:  http.StatusOK,
		},
		{
			name: "transfer in flight", method: http.MethodPost, path: "/api/transfer",
			setup: func(p *MockPage) { p.On("ExecTransaction", mock.Anything).Return(view.ErrTransferInFlight).Once() },
			want:  http.StatusConflict,
		},
		{
			name: "transfer without smart wallet", method: http.MethodPost, path: "/api/transfer",
			setup: func(p *MockPage) { p.On("ExecTransaction", mock.Anything).Return(view.ErrNoSmartWallet).Once() },
			want:  http.StatusConflict,
		},
		{
			name: "copy smart address", method: http.MethodPost, path: "/api/copy/wallet/smart",
			setup: func(p *MockPage) { p.On("CopyWalletAddress", mock.Anything, assets.KindSmart).Return(nil).Once() },
			want:  http.StatusOK,
		},
		{
			name: "copy unknown wallet", method: http.MethodPost, path: "/api/copy/wallet/cold",
			setup: func(p *MockPage) {
				p.On("CopyWalletAddress", mock.Anything, assets.Kind("cold")).
					Return(errors.Wrap(view.ErrUnknownWallet, `"cold"`)).Once()
			},
			want: http.StatusBadRequest,
		},
		{
			name: "copy signed without page", method: http.MethodPost, path: "/api/copy/signed",
			setup: func(p *MockPage) {
				p.On("CopySignedMessage", mock.Anything).Return(errors.Wrap(ErrNoPageConnected, "write clipboard")).Once()
			},
			want: http.StatusConflict,
		},
		{
			name: "toggle signed preview", method: http.MethodPost, path: "/api/signed/toggle",
			setup: func(p *MockPage) { p.On("ToggleSignedMessageExpanded").Return().Once() },
			want:  http.StatusOK,
		},
		{
			name: "unexpected failure is not echoed", method: http.MethodPost, path: "/api/sign",
			setup:   func(p *MockPage) { p.On("SignMessage", mock.Anything).Return(errors.New("rpc exploded at 10.1.2.3")).Once() },
			want:    http.StatusInternalServerError,
			wantErr: "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{})
			tt.setup(ts.page)

			w, resp := ts.do(t, tt.method, tt.path, goodToken, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want == http.StatusOK, resp.OK)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp.Error)
			}
			ts.page.AssertExpectations(t)
		})
	}
}

func TestEmbeddedPage(t *testing.T) {
	ts := newTestServer(t, Config{})

	w, _ := ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quantum Wallet Demo")

	w, _ = ts.do(t, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w, _ := ts.do(t, http.MethodGet, "/api/status", "", nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func dialWS(t *testing.T, base, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + "/api/ws"
	if token != "" {
		u += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(u, nil)
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestWebSocket_StreamsStateAndClipboard(t *testing.T) {
	ts := newTestServer(t, Config{})
	live := httptest.NewServer(ts.srv.Handler())
	defer live.Close()

	conn, _, err := dialWS(t, live.URL, goodToken)
	require.NoError(t, err)
	defer conn.Close()

	initial := readWS(t, conn)
	assert.Equal(t, "state", initial["type"])
	assert.Equal(t, 1, ts.hub.Count())

	require.NotNil(t, ts.onChange)
	ts.onChange()
	pushed := readWS(t, conn)
	assert.Equal(t, "state", pushed["type"])
	assert.Equal(t, "ada@example.com", pushed["data"].(map[string]any)["email"])

	require.NoError(t, ts.hub.WriteText(context.Background(), "0xabc"))
	clip := readWS(t, conn)
	assert.Equal(t, "clipboard", clip["type"])
	assert.Equal(t, "0xabc", clip["data"].(map[string]any)["text"])
}

func TestWebSocket_RequiresToken(t *testing.T) {
	ts := newTestServer(t, Config{})
	live := httptest.NewServer(ts.srv.Handler())
	defer live.Close()

	_, resp, err := dialWS(t, live.URL, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialWS(t, live.URL, "forged")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_WriteTextWithoutPage(t *testing.T) {
	hub := NewHub()
	err := hub.WriteText(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoPageConnected)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.WriteText(ctx, "hello"), context.Canceled)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, bearerToken(req), header)
	}
}
