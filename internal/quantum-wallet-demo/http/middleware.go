package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"

	correlationIDKey = "correlationID"
	claimsKey        = "sessionClaims"
)

type contextKey string

const correlationIDContextKey contextKey = "correlationID"

func loopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoopbackRequest(c.Request) {
			writeError(c, http.StatusForbidden, "forbidden")
			return
		}
		if !isSafeLocalHost(c.Request.Host) {
			writeError(c, http.StatusForbidden, "forbidden host")
			return
		}
		c.Next()
	}
}

// correlationID tags each request with X-Correlation-ID, keeping a caller-supplied one.
func correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Request = c.Request.WithContext(WithCorrelationID(c.Request.Context(), id))
		c.Next()
	}
}

func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Get(correlationIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// requireSession accepts "Authorization: Bearer <jwt>", or ?token= on WebSocket handshakes (allowQuery).
func requireSession(tokens TokenVerifier, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			writeError(c, http.StatusUnauthorized, "missing session token")
			return
		}
		claims, err := tokens.VerifyToken(token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func sessionClaims(c *gin.Context) *session.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*session.Claims); ok {
			return claims
		}
	}
	return nil
}
