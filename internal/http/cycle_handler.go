package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/service"
)

// CycleHandler mantiene dependencias para endpoints de ciclos.
type CycleHandler struct {
	logger    *zap.Logger
	cycleServ *service.CycleService
}

func NewCycleHandler(logger *zap.Logger, cycleServ *service.CycleService) *CycleHandler {
	return &CycleHandler{
		logger:    logger,
		cycleServ: cycleServ,
	}
}

// cyclePayload agrega el hint de expiracion sugerida (7 dias) al ciclo.
// Es informativo: nada lo hace cumplir.
func cyclePayload(cycle domain.EvaluationCycle) gin.H {
	return gin.H{
		"cycle":      cycle,
		"expires_at": cycle.ExpiresAt(),
	}
}

// Launch maneja POST /teams/:id/cycles. Solo el lider.
func (h *CycleHandler) Launch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cycle, err := h.cycleServ.Launch(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrLaunchConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "another launch is in progress, retry"})
		default:
			h.logger.Error("launch cycle failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not launch cycle"})
		}
		return
	}
	c.JSON(http.StatusCreated, cyclePayload(cycle))
}

// Close maneja POST /teams/:id/cycles/close. Solo el lider.
func (h *CycleHandler) Close(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cycle, err := h.cycleServ.Close(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrNoActiveCycle):
			c.JSON(http.StatusConflict, gin.H{"error": "no active cycle"})
		default:
			h.logger.Error("close cycle failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not close cycle"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// List maneja GET /teams/:id/cycles.
func (h *CycleHandler) List(c *gin.Context) {
	cycles, err := h.cycleServ.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("list cycles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list cycles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}

// GetActive maneja GET /teams/:id/cycles/active.
func (h *CycleHandler) GetActive(c *gin.Context) {
	cycle, err := h.cycleServ.GetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNoActiveCycle) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active cycle"})
			return
		}
		h.logger.Error("get active cycle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get active cycle"})
		return
	}
	c.JSON(http.StatusOK, cyclePayload(cycle))
}
