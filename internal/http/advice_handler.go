package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/service"
)

// AdviceHandler mantiene dependencias para endpoints de consejos y metricas.
type AdviceHandler struct {
	logger      *zap.Logger
	adviceServ  *service.AdviceService
	metricsServ *service.MetricsService
}

func NewAdviceHandler(logger *zap.Logger, adviceServ *service.AdviceService, metricsServ *service.MetricsService) *AdviceHandler {
	return &AdviceHandler{
		logger:      logger,
		adviceServ:  adviceServ,
		metricsServ: metricsServ,
	}
}

// TeamMetrics maneja GET /teams/:id/metrics. Solo el lider.
func (h *AdviceHandler) TeamMetrics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	metrics, err := h.metricsServ.TeamMetrics(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrNoActiveCycle):
			c.JSON(http.StatusNotFound, gin.H{"error": "no active cycle"})
		default:
			h.logger.Error("team metrics failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute metrics"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// TeamAdvice maneja GET /teams/:id/advice. Solo el lider.
func (h *AdviceHandler) TeamAdvice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	advice, err := h.adviceServ.TeamAdvice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrNoActiveCycle):
			c.JSON(http.StatusNotFound, gin.H{"error": "no active cycle"})
		case errors.Is(err, service.ErrNoResponses):
			c.JSON(http.StatusNotFound, gin.H{"error": "no shared responses in the active cycle"})
		default:
			h.logger.Error("team advice failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate advice"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

// MyAdvice maneja POST /me/advice: consejos sobre los propios envios.
func (h *AdviceHandler) MyAdvice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	advice, err := h.adviceServ.IndividualAdvice(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoResponses) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no responses submitted yet"})
			return
		}
		h.logger.Error("individual advice failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate advice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}
