package middleware

import (
	"github.com/gofiber/fiber/v2"
)

func RequireAnyRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := GetAccount(c)
		if account == nil {
			return Unauthorized("Account not found")
		}

		for _, role := range roles {
			if account.HasRole(role) {
				return c.Next()
			}
		}

		return Forbidden("Insufficient permissions for this operation")
	}
}
