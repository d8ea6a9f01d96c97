package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/apperrors"
	"github.com/omnisearch/backend/internal/models"
)

var scriptInjectionPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQueryLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware screens search requests before they reach the handler:
// content type, query shape, and obvious injection attempts. Semantic
// validation (credentials, mandatory provider) stays in the service.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 500
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !strings.Contains(c.Path(), "/search") {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !allowed(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(models.ErrorResponse{
				Error: "Unsupported content type",
				Code:  apperrors.CodeValidation,
			})
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid JSON format",
				Code:  apperrors.CodeValidation,
			})
		}

		query, ok := req["query"].(string)
		if !ok || strings.TrimSpace(query) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Query is required",
				Code:  apperrors.CodeValidation,
			})
		}

		if len(query) > cfg.MaxQueryLength {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Query exceeds maximum length",
				Code:  apperrors.CodeValidation,
			})
		}

		if scriptInjectionPattern.MatchString(query) {
			cfg.Logger.Warn("Potential injection attempt", zap.String("ip", c.IP()))
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid query content",
				Code:  apperrors.CodeValidation,
			})
		}

		return c.Next()
	}
}

func allowed(contentType string, allowedTypes []string) bool {
	for _, t := range allowedTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
