package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/service"
	"github.com/RajeshPuri/VaultFlow/internal/token"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedRequest struct {
	Provider string `json:"provider"`
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Register handles POST /auth/register. The account starts unverified and no
// session token is returned.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		u, err := svc.Register(c.UserContext(), req.Email, req.Password, req.Name)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "email already registered")
			case errors.Is(err, service.ErrEmailRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "a valid email is required")
			case errors.Is(err, service.ErrWeakPassword):
				return writeError(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 8 characters")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
	}
}

// Login handles POST /auth/login. Unverified accounts are bounced with 403
// after the verification email is re-sent.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		tok, u, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
			case errors.Is(err, service.ErrEmailNotVerified):
				return writeError(c, fiber.StatusForbidden, "VERIFICATION_REQUIRED", "check your email to verify your account")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"token": tok, "user": u})
	}
}

// VerifyEmail handles GET /auth/verify?token=.
func VerifyEmail(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Query("token")
		if tok == "" {
			return writeError(c, fiber.StatusBadRequest, "TOKEN_REQUIRED", "token is required")
		}

		if err := svc.VerifyEmail(c.UserContext(), tok); err != nil {
			switch {
			case errors.Is(err, token.ErrInvalidToken):
				return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "invalid or expired token")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "account not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"status": "verified"})
	}
}

// FederatedLogin handles POST /auth/federated for provider-asserted sign-ins.
func FederatedLogin(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req federatedRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		tok, u, err := svc.FederatedLogin(c.UserContext(), req.Provider, req.Subject, req.Email, req.Name)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "provider assertion incomplete")
			case errors.Is(err, service.ErrEmailRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "a valid email is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"token": tok, "user": u})
	}
}

// RequestPasswordReset handles POST /auth/password-reset. Always 202 so the
// endpoint cannot be used to probe for accounts.
func RequestPasswordReset(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		if err := svc.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	}
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func ConfirmPasswordReset(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetConfirmRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		if err := svc.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
			switch {
			case errors.Is(err, token.ErrInvalidToken):
				return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "invalid or expired token")
			case errors.Is(err, service.ErrWeakPassword):
				return writeError(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 8 characters")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "account not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"status": "password_updated"})
	}
}
