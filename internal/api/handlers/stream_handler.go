package handlers

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/apperrors"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/internal/orchestrator"
	"github.com/omnisearch/backend/internal/search"
	"github.com/omnisearch/backend/pkg/logger"
)

// StreamHandler runs searches over a websocket, pushing per-adapter
// settlement events while the fan-out is in flight and the full response
// once the pipeline finishes.
type StreamHandler struct {
	service *search.Service
}

func NewStreamHandler(service *search.Service) *StreamHandler {
	return &StreamHandler{service: service}
}

func (h *StreamHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Search stream connected")

	defer func() {
		c.Close()
		logger.Info("Search stream closed")
	}()

	for {
		var msg struct {
			Type    string               `json:"type"`
			Request models.SearchRequest `json:"request"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("Search stream read ended", zap.Error(err))
			return
		}
		if msg.Type != "search" {
			continue
		}

		h.runSearch(c, msg.Request)
	}
}

func (h *StreamHandler) runSearch(c *websocket.Conn, req models.SearchRequest) {
	// Adapter goroutines emit progress concurrently; serialize writes.
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(v); err != nil {
			logger.Debug("Search stream write failed", zap.Error(err))
		}
	}

	progress := func(ev orchestrator.ProgressEvent) {
		writeJSON(map[string]interface{}{
			"type":  "adapter",
			"event": ev,
		})
	}

	resp, err := h.service.Search(context.Background(), req, progress)
	if err != nil {
		message := apperrors.NewInternal().Message
		if appErr, ok := apperrors.AsAppError(err); ok {
			message = appErr.Message
		} else {
			logger.Error("Streamed search failed unexpectedly", zap.Error(err))
		}
		writeJSON(map[string]interface{}{
			"type":  "error",
			"error": message,
		})
		return
	}

	writeJSON(map[string]interface{}{
		"type":     "response",
		"response": resp,
	})
}
