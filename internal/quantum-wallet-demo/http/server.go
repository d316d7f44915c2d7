package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"go.uber.org/zap"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/httpui"
)

const DefaultAddr = "127.0.0.1:6137"

type Config struct {
	// Addr must be a loopback host:port.
	Addr           string
	AllowedOrigins []string
	Version        string

	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int

	Logger *zap.Logger
}

type Server struct {
	cfg     Config
	page    Page
	tokens  TokenVerifier
	hub     *Hub
	limiter *RateLimiter

	engine   *gin.Engine
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	origins  map[string]struct{}

	unsubscribe func()
}

func NewServer(cfg Config, page Page, tokens TokenVerifier, hub *Hub) (*Server, error) {
	if page == nil || tokens == nil || hub == nil {
		return nil, errors.New("http server: page, tokens and hub are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid listen address %q", cfg.Addr)
	}
	if !isSafeLocalHost(host) {
		return nil, errors.Newf("listen address %q is not loopback", cfg.Addr)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		page:    page,
		tokens:  tokens,
		hub:     hub,
		origins: make(map[string]struct{}),
	}
	for _, o := range uniqueOrigins(append([]string{"http://" + cfg.Addr}, cfg.AllowedOrigins...)) {
		s.origins[o] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.unsubscribe = page.OnChange(s.pushState)
	return s, nil
}

func (s *Server) routes() (*gin.Engine, error) {
	ui, err := httpui.Handler()
	if err != nil {
		return nil, errors.Wrap(err, "load embedded ui")
	}

	origins := make([]string, 0, len(s.origins))
	for o := range s.origins {
		origins = append(origins, o)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loopbackOnly())
	r.Use(correlationID())
	r.Use(accessLog(s.cfg.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", CorrelationIDHeader},
		ExposeHeaders:    []string{CorrelationIDHeader},
		AllowCredentials: false,
		MaxAge:           10 * time.Minute,
	}))

	limit := func(c *gin.Context) { c.Next() }
	if s.limiter != nil {
		limit = s.limiter.Middleware()
	}

	api := r.Group("/api")
	{
		public := api.Group("", limit)
		public.GET("/status", s.handleStatus)
		public.POST("/session/login", s.handleLogin)

		authed := api.Group("", requireSession(s.tokens, false), limit)
		authed.POST("/session/logout", s.handleLogout)
		authed.GET("/state", s.handleState)
		authed.PUT("/form", s.handleForm)
		authed.POST("/chain/toggle", s.handleToggleChain)
		authed.POST("/sign", s.handleSign)
		authed.POST("/transfer", s.handleTransfer)
		authed.POST("/copy/wallet/:kind", s.handleCopyWallet)
		authed.POST("/copy/signed", s.handleCopySigned)
		authed.POST("/signed/toggle", s.handleToggleSigned)

		api.GET("/ws", requireSession(s.tokens, true), limit, s.handleWebSocket)
	}

	uiHandler := gin.WrapH(ui)
	r.GET("/", uiHandler)
	r.NoRoute(uiHandler)
	return r, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := s.origins[normalizeOrigin(origin)]
	return ok
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) pushState() {
	if s.hub.Count() == 0 {
		return
	}
	if _, err := s.hub.Broadcast(msgTypeState, s.page.State()); err != nil {
		log.Warn("failed to push state", "error", err)
	}
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.cfg.Addr)
	}
	log.Info("local API listening", "addr", "http://"+ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops accepting requests, drains in-flight ones and closes every page.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.Close()
	return s.httpSrv.Shutdown(ctx)
}
