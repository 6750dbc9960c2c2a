package token

import "time"

// Session is an issued admin session token.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// Claims defines the JWT claims of an admin session
type Claims struct {
	KeyID   uint   `json:"key_id"`
	Name    string `json:"name"`
	TokenID string `json:"token_id"`
}

// Provider defines the interface for token operations
type Provider interface {
	IssueSession(keyID uint, name string) (*Session, error)
	ParseToken(tokenString string) (*Claims, error)
}
