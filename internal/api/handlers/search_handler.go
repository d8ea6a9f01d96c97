package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/apperrors"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/internal/search"
	"github.com/omnisearch/backend/pkg/logger"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Warn("Failed to parse search request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request body",
			Code:  apperrors.CodeValidation,
		})
	}

	resp, err := h.service.Search(c.Context(), req, nil)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// MethodNotAllowed answers non-POST verbs on the search route.
func (h *SearchHandler) MethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(models.ErrorResponse{
		Error: fmt.Sprintf("Method %s Not Allowed", c.Method()),
	})
}

// writeError maps the error taxonomy onto HTTP. Anything that is not a
// typed AppError is unexpected: log it with the full chain and return
// the generic message.
func writeError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return c.Status(appErr.Status).JSON(models.ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
	}

	logger.Error("Search failed unexpectedly", zap.Error(err))
	internal := apperrors.NewInternal()
	return c.Status(internal.Status).JSON(models.ErrorResponse{
		Error: internal.Message,
		Code:  internal.Code,
	})
}
