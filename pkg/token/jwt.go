package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "ytstream.api"

// jwtClaims is an internal struct to satisfy jwt.Claims interface
type jwtClaims struct {
	KeyID   uint   `json:"key_id"`
	Name    string `json:"name"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

type jwtProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTProvider creates a new instance of JWT provider. Sessions live for ttl.
func NewJWTProvider(secret string, ttl time.Duration) Provider {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &jwtProvider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueSession signs an HS256 session token for an admin key
func (p *jwtProvider) IssueSession(keyID uint, name string) (*Session, error) {
	now := p.now()
	s := &Session{
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(p.ttl),
	}

	claims := &jwtClaims{
		KeyID:   keyID,
		Name:    name,
		TokenID: s.TokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	var err error
	s.Token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseToken parses a session token returning Claims
func (p *jwtProvider) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*jwtClaims); ok && token.Valid {
		return &Claims{
			KeyID:   claims.KeyID,
			Name:    claims.Name,
			TokenID: claims.TokenID,
		}, nil
	}
	return nil, fmt.Errorf("invalid token")
}
