package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/helpers"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

func (s *Server) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, agentStatusResponse{
		Agent:   constants.AppName,
		Version: s.cfg.Version,
		Clients: s.hub.Count(),
		State:   publicState(s.page.State()),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := readJSONBody(c.Request, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	password := []byte(req.Password)
	req.Password = ""
	defer helpers.ZeroBytes(password)

	token, err := s.page.Login(c.Request.Context(), session.Credentials{Email: req.Email, Password: password})
	if err != nil {
		log.Warn("login failed", "correlationId", GetCorrelationID(c), "error", err)
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, loginResponse{Token: token, State: s.page.State()})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.page.Logout(c.Request.Context()); err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, nil)
}

func (s *Server) handleState(c *gin.Context) {
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleForm(c *gin.Context) {
	var req formRequest
	if err := readJSONBody(c.Request, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s.page.UpdateForm(view.FormUpdate{Message: req.Message, Amount: req.Amount, Recipient: req.Recipient})
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleToggleChain(c *gin.Context) {
	s.page.ToggleChain(c.Request.Context())
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleSign(c *gin.Context) {
	if err := s.page.SignMessage(c.Request.Context()); err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, s.page.State())
}

// handleTransfer blocks until the transfer settles; the outcome is in state.error and state.lastTxHash.
func (s *Server) handleTransfer(c *gin.Context) {
	if err := s.page.ExecTransaction(c.Request.Context()); err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleCopyWallet(c *gin.Context) {
	kind := assets.Kind(c.Param("kind"))
	if err := s.page.CopyWalletAddress(c.Request.Context(), kind); err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleCopySigned(c *gin.Context) {
	if err := s.page.CopySignedMessage(c.Request.Context()); err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleToggleSigned(c *gin.Context) {
	s.page.ToggleSignedMessageExpanded()
	writeJSON(c, http.StatusOK, s.page.State())
}

func (s *Server) handleWebSocket(c *gin.Context) {
	initial, err := encodeState(s.page.State())
	if err != nil {
		writeFailure(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied.
		log.Warn("websocket upgrade failed", "correlationId", GetCorrelationID(c), "error", err)
		return
	}
	if err := s.hub.attach(conn, initial); err != nil {
		log.Warn("websocket rejected", "error", err)
	}
}
