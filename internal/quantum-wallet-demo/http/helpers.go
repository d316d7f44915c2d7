package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/view"
)

func isLoopbackRequest(r *http.Request) bool {
	ra := r.RemoteAddr

	h, _, err := net.SplitHostPort(ra)
	if err != nil {
		ip := net.ParseIP(ra)
		return ip != nil && ip.IsLoopback()
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

func isSafeLocalHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host))
}

func uniqueOrigins(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func writeJSON(c *gin.Context, status int, data any) {
	c.JSON(status, extensionResponse{OK: status < http.StatusBadRequest, Data: data})
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, extensionResponse{OK: false, Error: msg})
}

// writeFailure maps err to a status code. Unexpected errors are not echoed to the client.
func writeFailure(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(c, status, msg)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrNotReady), errors.Is(err, view.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrWeakPassword),
		errors.Is(err, view.ErrNothingToSign),
		errors.Is(err, view.ErrNothingToCopy),
		errors.Is(err, view.ErrUnknownWallet):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAlreadyAuthenticated),
		errors.Is(err, view.ErrNoSmartWallet),
		errors.Is(err, view.ErrTransferInFlight),
		errors.Is(err, ErrNoPageConnected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func readJSONBody(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func encodeState(st view.State) ([]byte, error) {
	b, err := json.Marshal(wsMessage{Type: msgTypeState, Data: st})
	if err != nil {
		return nil, errors.Wrap(err, "marshal state")
	}
	return b, nil
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// publicState is what unauthenticated callers may see.
func publicState(st view.State) view.State {
	return view.State{
		Ready:         st.Ready,
		Authenticated: st.Authenticated,
		Appearance:    st.Appearance,
		Network:       st.Network,
		DisplayName:   st.DisplayName,
		ChainID:       st.ChainID,
		Explorer:      st.Explorer,
	}
}
