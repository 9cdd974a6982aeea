package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/mbi"
	"teamzen/internal/service"
)

// ResponseHandler mantiene dependencias para endpoints de respuestas.
type ResponseHandler struct {
	logger      *zap.Logger
	respServ    *service.ResponseService
	metricsServ *service.MetricsService
}

func NewResponseHandler(logger *zap.Logger, respServ *service.ResponseService, metricsServ *service.MetricsService) *ResponseHandler {
	return &ResponseHandler{
		logger:      logger,
		respServ:    respServ,
		metricsServ: metricsServ,
	}
}

// parseAnswers convierte las claves JSON (strings) a indices de item.
func parseAnswers(raw map[string]int) (map[int]int, bool) {
	answers := make(map[int]int, len(raw))
	for key, value := range raw {
		item, err := strconv.Atoi(key)
		if err != nil || !mbi.ValidItem(item) || !mbi.ValidValue(value) {
			return nil, false
		}
		answers[item] = value
	}
	return answers, true
}

// Submit maneja POST /cycles/:id/responses.
func (h *ResponseHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Answers map[string]int `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	answers, ok := parseAnswers(req.Answers)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers must map items 1-22 to values 0-6"})
		return
	}

	submitted, err := h.respServ.Submit(c.Request.Context(), userID, c.Param("id"), answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswersIncomplete):
			c.JSON(http.StatusBadRequest, gin.H{"error": "all 22 answers are required"})
		case errors.Is(err, service.ErrCycleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found"})
		case errors.Is(err, service.ErrCycleClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "cycle is closed, refresh and retry"})
		case errors.Is(err, service.ErrDuplicateResponse):
			c.JSON(http.StatusConflict, gin.H{"error": "response already submitted"})
		default:
			h.logger.Error("submit response failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit response"})
		}
		return
	}
	c.JSON(http.StatusCreated, submitted)
}

// SubmitIndividual maneja POST /responses: envio fuera de todo equipo.
func (h *ResponseHandler) SubmitIndividual(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Answers map[string]int `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	answers, ok := parseAnswers(req.Answers)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers must map items 1-22 to values 0-6"})
		return
	}

	submitted, err := h.respServ.SubmitIndividual(c.Request.Context(), userID, answers)
	if err != nil {
		if errors.Is(err, service.ErrAnswersIncomplete) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all 22 answers are required"})
			return
		}
		h.logger.Error("submit individual response failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit response"})
		return
	}
	c.JSON(http.StatusCreated, submitted)
}

// ListMine maneja GET /me/responses.
func (h *ResponseHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	responses, err := h.respServ.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list responses failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list responses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// Participation maneja GET /cycles/:id/participation.
func (h *ResponseHandler) Participation(c *gin.Context) {
	participation, err := h.metricsServ.CycleParticipation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found"})
			return
		}
		h.logger.Error("participation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute participation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participation": participation})
}
