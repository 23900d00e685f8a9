package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/RajeshPuri/VaultFlow/internal/config"
)

// Purpose restricts what a signed token may be used for. A token is only
// accepted for the purpose it was issued with.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposePasswordReset Purpose = "password_reset"
)

const (
	VerifyEmailTTL   = 24 * time.Hour
	PasswordResetTTL = time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Manager issues and verifies HS256-signed JWTs.
type Manager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewManager creates a token manager from JWT config.
func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := time.Duration(cfg.AccessTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(cfg.Secret), accessTTL: ttl}, nil
}

// Issue signs a token for the given user and purpose with the given lifetime.
func (m *Manager) Issue(userID string, purpose Purpose, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": string(purpose),
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// IssueAccess signs a session token for the given user.
func (m *Manager) IssueAccess(userID string) (string, error) {
	return m.Issue(userID, PurposeAccess, m.accessTTL)
}

// Parse verifies signature, expiry, and purpose, returning the subject user id.
func (m *Manager) Parse(tokenStr string, want Purpose) (string, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if p, _ := claims["purpose"].(string); p != string(want) {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
