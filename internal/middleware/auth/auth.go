package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/omnisearch/backend/internal/models"
)

type Config struct {
	Enabled       bool
	SessionHeader string
}

// Middleware rejects requests without a session token. Session issuance
// and validation belong to the external auth service; this gate only
// requires that a bearer token is present.
func Middleware(cfg Config) fiber.Handler {
	header := cfg.SessionHeader
	if header == "" {
		header = "Authorization"
	}

	return func(c *fiber.Ctx) error {
		if !cfg.Enabled {
			return c.Next()
		}

		token := c.Get(header)
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error: "Authentication required",
			})
		}

		return c.Next()
	}
}
