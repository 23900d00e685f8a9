package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/token"
)

// UserIDLocalKey is the key under which the authenticated user's id is stored
// in Fiber's context locals.
const UserIDLocalKey = "user_id"

// RequireAuth guards a route group behind a bearer access token. The token's
// subject is stored in locals under UserIDLocalKey for downstream handlers.
func RequireAuth(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			// Websocket clients cannot set headers from the browser, so the
			// token may arrive as a query parameter instead.
			tok = c.Query("token")
		}
		if tok == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing access token")
		}

		userID, err := tokens.Parse(tok, token.PurposeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user's id set by RequireAuth, or "" when
// the request is unauthenticated.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
