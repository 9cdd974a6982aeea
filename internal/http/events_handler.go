package http

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/events"
)

// EventsHandler expone el change feed por equipo como server-sent events.
type EventsHandler struct {
	logger   *zap.Logger
	notifier events.Notifier
}

func NewEventsHandler(logger *zap.Logger, notifier events.Notifier) *EventsHandler {
	return &EventsHandler{
		logger:   logger,
		notifier: notifier,
	}
}

// Stream maneja GET /teams/:id/events. Mantiene la conexion abierta y
// reenvia cada evento del equipo hasta que el cliente corta.
func (h *EventsHandler) Stream(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	teamID := c.Param("id")
	ctx := c.Request.Context()
	feed, cancel := h.notifier.Subscribe(ctx, teamID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, ok := <-feed:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("event marshal failed", zap.Error(err))
				return true
			}
			c.SSEvent(event.Type, string(payload))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
