package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/keys"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
	"ytstream.api/pkg/token"
)

const (
	// ContextKey holds the authorized *keys.APIKey.
	ContextKey = "api_key"
	// ContextAdminID holds the admin key ID for admin routes.
	ContextAdminID = "admin_key_id"
)

// KeyStore is the subset of keys.Store the middleware needs.
type KeyStore interface {
	Authorize(ctx context.Context, key string) (*keys.APIKey, error)
	AuthorizeAdmin(ctx context.Context, key string) (*keys.APIKey, error)
	RecordUsage(ctx context.Context, id uint) error
	Log(ctx context.Context, entry *keys.APILog) error
}

type AuthMiddleware struct {
	store KeyStore
	token token.Provider
	l     logger.Logger
}

func NewAuthMiddleware(store KeyStore, t token.Provider, l logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		store: store,
		token: t,
		l:     l,
	}
}

// RequireKey rejects the request before the handler runs unless api_key is
// valid, unexpired and under quota. Accepted requests consume one unit and
// are logged with their final status.
func (m *AuthMiddleware) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		k, err := m.store.Authorize(ctx, c.Query("api_key"))
		if err != nil {
			m.rejectKey(c, err)
			return
		}
		// a concurrent request may have taken the last unit since Authorize
		if err := m.store.RecordUsage(ctx, k.ID); err != nil {
			m.rejectKey(c, err)
			return
		}

		c.Set(ContextKey, k)
		c.Next()

		entry := &keys.APILog{
			APIKeyID:       k.ID,
			Endpoint:       endpoint(c),
			Query:          c.Query("query"),
			IPAddress:      c.ClientIP(),
			ResponseStatus: c.Writer.Status(),
		}
		// the request context may already be cancelled by a departed client
		if err := m.store.Log(context.WithoutCancel(ctx), entry); err != nil {
			m.l.Error("Failed to write api log", "key_id", k.ID, "error", err)
		}
	}
}

func (m *AuthMiddleware) rejectKey(c *gin.Context, err error) {
	switch {
	case errors.Is(err, keys.ErrKeyMissing):
		response.Error(c, http.StatusUnauthorized, "API key is required")
	case errors.Is(err, keys.ErrKeyInvalid):
		response.Error(c, http.StatusUnauthorized, "Invalid API key")
	case errors.Is(err, keys.ErrKeyExpired):
		response.Error(c, http.StatusUnauthorized, "API key has expired")
	case errors.Is(err, keys.ErrQuotaExceeded):
		response.Error(c, http.StatusTooManyRequests, "Daily limit exceeded")
	default:
		m.l.Error("Failed to authorize api key", "error", err)
		response.Fail(c, "Internal Server Error")
	}
}

// RequireAdmin accepts an admin key in api_key or admin_key, or an admin
// session token as "Authorization: Bearer <token>".
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && strings.ToUpper(authHeader[0:7]) == "BEARER " {
			claims, err := m.token.ParseToken(authHeader[7:])
			if err != nil {
				response.Error(c, http.StatusUnauthorized, "Invalid or expired session")
				return
			}
			c.Set(ContextAdminID, claims.KeyID)
			c.Next()
			return
		}

		key := c.Query("api_key")
		if key == "" {
			key = c.Query("admin_key")
		}
		k, err := m.store.AuthorizeAdmin(c.Request.Context(), key)
		switch {
		case err == nil:
		case errors.Is(err, keys.ErrKeyMissing):
			response.Error(c, http.StatusUnauthorized, "Admin API key is required")
			return
		case errors.Is(err, keys.ErrNotAdmin):
			response.Error(c, http.StatusForbidden, "Invalid admin API key")
			return
		case errors.Is(err, keys.ErrKeyExpired):
			response.Error(c, http.StatusUnauthorized, "API key has expired")
			return
		default:
			m.l.Error("Failed to authorize admin key", "error", err)
			response.Fail(c, "Internal Server Error")
			return
		}

		c.Set(ContextKey, k)
		c.Set(ContextAdminID, k.ID)
		c.Next()
	}
}

func endpoint(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
