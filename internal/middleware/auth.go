package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/service/auth"
)

const AccountContextKey = "account"

// AuthRequired resolves the bearer token into an account. The access token
// may also arrive as ?access_token= for EventSource clients that cannot set
// headers.
func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")

		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return Unauthorized("Invalid authorization header format")
			}
			token = parts[1]
		}

		if token == "" {
			return Unauthorized("Missing authorization header")
		}

		account, err := authService.AccountFromToken(token)
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(AccountContextKey, account)

		return c.Next()
	}
}

// GetAccount returns nil when the request carries no session, which the
// notification service reports as ErrNotAuthenticated.
func GetAccount(c *fiber.Ctx) *domain.Account {
	account, ok := c.Locals(AccountContextKey).(*domain.Account)
	if !ok {
		return nil
	}
	return account
}
