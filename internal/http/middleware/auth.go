package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"infolock/internal/token"
)

const (
	// UserIDLocalKey is the context key holding the authenticated user's ID.
	UserIDLocalKey = "user_id"
	// UsernameLocalKey is the context key holding the authenticated username.
	UsernameLocalKey = "username"
	// EmailLocalKey is the context key holding the authenticated email.
	EmailLocalKey = "email"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	Validate(tokenStr string) (*token.Claims, error)
}

// BearerAuth rejects requests without a valid Authorization: Bearer token and
// stores the caller's identity in context locals for downstream handlers.
// It returns fiber.ErrUnauthorized so the global error handler renders the
// standard envelope.
func BearerAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return fiber.ErrUnauthorized
		}

		claims, err := tokens.Validate(strings.TrimPrefix(auth, prefix))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(UserIDLocalKey, claims.UserID)
		c.Locals(UsernameLocalKey, claims.Username)
		c.Locals(EmailLocalKey, claims.Email)

		return c.Next()
	}
}
