package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RajeshPuri/VaultFlow/internal/mail"
	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	"github.com/RajeshPuri/VaultFlow/internal/token"
)

var (
	ErrEmailRequired      = errors.New("a valid email is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified is returned on every sign-in attempt until the
	// account confirms its address; each attempt re-sends the verification
	// email.
	ErrEmailNotVerified = errors.New("email not verified")
)

const minPasswordLen = 8

// AuthService implements the identity gate: local accounts with enforced
// email verification, federated accounts, and password reset.
type AuthService interface {
	// Register creates an unverified account and sends the verification
	// email. No session token is issued; the user stays signed out until
	// verified.
	Register(ctx context.Context, email, password, name string) (*model.User, error)

	// Login exchanges credentials for an access token. Unverified accounts
	// are rejected with ErrEmailNotVerified after re-sending the
	// verification email.
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	// VerifyEmail consumes a verification token and marks the account
	// verified.
	VerifyEmail(ctx context.Context, tokenStr string) error

	// FederatedLogin signs in a user asserted by an external identity
	// provider, provisioning a verified account on first sight.
	FederatedLogin(ctx context.Context, provider, subject, email, name string) (string, *model.User, error)

	// RequestPasswordReset sends a reset email when the account exists. It
	// never reveals whether the email is registered.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and replaces the password.
	ResetPassword(ctx context.Context, tokenStr, newPassword string) error
}

type authService struct {
	users   repository.UserRepository
	tokens  *token.Manager
	mailer  mail.Mailer
	baseURL string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, mailer mail.Mailer, baseURL string) AuthService {
	return &authService{users: users, tokens: tokens, mailer: mailer, baseURL: strings.TrimRight(baseURL, "/")}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) verifyLink(tok string) string {
	return s.baseURL + "/auth/verify?token=" + url.QueryEscape(tok)
}

func (s *authService) resetLink(tok string) string {
	return s.baseURL + "/reset-password?token=" + url.QueryEscape(tok)
}

func (s *authService) sendVerification(u *model.User) error {
	tok, err := s.tokens.Issue(u.ID, token.PurposeVerifyEmail, token.VerifyEmailTTL)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	if err := s.mailer.SendVerification(u.Email, u.Name, s.verifyLink(tok)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrEmailRequired
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := s.sendVerification(stored); err != nil {
		// The account exists; the next sign-in attempt re-sends the email.
		return stored, err
	}
	return stored, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	// Federated accounts have no local password.
	if u.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !u.EmailVerified {
		// Bounce the user back to "check your email" on every attempt.
		_ = s.sendVerification(u)
		return "", nil, ErrEmailNotVerified
	}

	tok, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue access token: %w", err)
	}
	return tok, u, nil
}

func (s *authService) VerifyEmail(ctx context.Context, tokenStr string) error {
	userID, err := s.tokens.Parse(tokenStr, token.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.users.SetEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *authService) FederatedLogin(ctx context.Context, provider, subject, email, name string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if provider == "" || subject == "" {
		return "", nil, ErrInvalidCredentials
	}
	if email == "" || !strings.Contains(email, "@") {
		return "", nil, ErrEmailRequired
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		// First sight: provision a verified account. The provider already
		// asserted ownership of the address.
		u, err = s.users.Create(ctx, &model.User{
			ID:            uuid.New().String(),
			Email:         email,
			Name:          strings.TrimSpace(name),
			Provider:      provider,
			EmailVerified: true,
			CreatedAt:     time.Now().UTC(),
		})
	}
	if err != nil {
		return "", nil, err
	}

	tok, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue access token: %w", err)
	}
	return tok, u, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No enumeration: unknown addresses succeed silently.
			return nil
		}
		return err
	}

	tok, err := s.tokens.Issue(u.ID, token.PurposePasswordReset, token.PasswordResetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(u.Email, u.Name, s.resetLink(tok)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	userID, err := s.tokens.Parse(tokenStr, token.PurposePasswordReset)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
