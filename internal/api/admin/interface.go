package admin

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/cookie"
	"ytstream.api/internal/keys"
)

// AdminHandler defines the interface for key management and diagnostics
type AdminHandler interface {
	Metrics(c *gin.Context)
	ListAPIKeys(c *gin.Context)
	CreateAPIKey(c *gin.Context)
	RevokeAPIKey(c *gin.Context)
	RecentLogs(c *gin.Context)
	CreateSession(c *gin.Context)
	AuthStatus(c *gin.Context)
}

// KeyAdmin is the subset of keys.Store the admin API needs
type KeyAdmin interface {
	Create(ctx context.Context, p keys.CreateParams) (*keys.APIKey, error)
	List(ctx context.Context) ([]keys.APIKey, error)
	Revoke(ctx context.Context, id uint) error
	Metrics(ctx context.Context) (*keys.Metrics, error)
	RecentLogs(ctx context.Context, limit int) ([]keys.LogView, error)
}

// CookieStatus reports on the cookie artifact and its refresher
type CookieStatus interface {
	Status() cookie.Status
}

type RefresherStatus interface {
	Status() cookie.RefresherStatus
}

// CreateKeyRequest defines the payload for creating an API key
type CreateKeyRequest struct {
	Name       string `json:"name"`
	DaysValid  int    `json:"days_valid"`
	DailyLimit int    `json:"daily_limit"`
	IsAdmin    bool   `json:"is_admin"`
}

// CreateKeyResponse is returned once; the key is not shown again by create
type CreateKeyResponse struct {
	Message    string    `json:"message"`
	APIKey     string    `json:"api_key"`
	Name       string    `json:"name"`
	ValidUntil time.Time `json:"valid_until"`
}

// RevokeKeyRequest defines the payload for revoking an API key
type RevokeKeyRequest struct {
	ID uint `json:"id"`
}

// SessionResponse carries an admin session token
type SessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthStatusResponse combines the cookie artifact state with the refresher state
type AuthStatusResponse struct {
	cookie.Status
	Refresher cookie.RefresherStatus `json:"refresher"`
}
