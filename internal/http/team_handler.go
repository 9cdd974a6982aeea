package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/service"
)

// TeamHandler mantiene dependencias para endpoints de equipos.
type TeamHandler struct {
	logger   *zap.Logger
	teamServ *service.TeamService
}

func NewTeamHandler(logger *zap.Logger, teamServ *service.TeamService) *TeamHandler {
	return &TeamHandler{
		logger:   logger,
		teamServ: teamServ,
	}
}

// Create maneja POST /teams.
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	team, err := h.teamServ.CreateTeam(c.Request.Context(), service.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    userID,
	})
	if err != nil {
		if errors.Is(err, service.ErrTeamNameEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team name empty"})
			return
		}
		h.logger.Error("create team failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create team"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"team": team})
}

// List maneja GET /teams: equipos donde el usuario participa.
func (h *TeamHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	teams, err := h.teamServ.ListTeams(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list teams failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list teams"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// Get maneja GET /teams/:id. Solo lider y miembros; el codigo de
// invitacion solo viaja al lider.
func (h *TeamHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, err := h.teamServ.GetTeamAs(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of the team"})
		default:
			h.logger.Error("get team failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get team"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}

// Update maneja PATCH /teams/:id. Solo el lider.
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name                   *string `json:"name"`
		Description            *string `json:"description"`
		IncludeLeaderInMetrics *bool   `json:"include_leader_in_metrics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	team, err := h.teamServ.UpdateTeam(c.Request.Context(), c.Param("id"), userID, service.UpdateTeamInput{
		Name:                   req.Name,
		Description:            req.Description,
		IncludeLeaderInMetrics: req.IncludeLeaderInMetrics,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrTeamNameEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "team name empty"})
		default:
			h.logger.Error("update team failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update team"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}

// Join maneja POST /teams/join: canjea un codigo de invitacion.
func (h *TeamHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	member, err := h.teamServ.JoinByCode(c.Request.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invite code invalid"})
		case errors.Is(err, service.ErrAlreadyMember), errors.Is(err, service.ErrLeaderCannotJoin):
			c.JSON(http.StatusConflict, gin.H{"error": "already part of the team"})
		default:
			h.logger.Error("join team failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join team"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// ListMembers maneja GET /teams/:id/members. Solo lider y miembros.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	members, err := h.teamServ.ListMembers(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of the team"})
		default:
			h.logger.Error("list members failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list members"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// UpdateMyMembership maneja PATCH /teams/:id/members/me.
func (h *TeamHandler) UpdateMyMembership(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ShareResultsWithLeader *bool `json:"share_results_with_leader" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	member, err := h.teamServ.SetShareResults(c.Request.Context(), c.Param("id"), userID, *req.ShareResultsWithLeader)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		h.logger.Error("update membership failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update membership"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

// SendInvite maneja POST /teams/:id/invite/send. Solo el lider.
func (h *TeamHandler) SendInvite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.teamServ.SendInvite(c.Request.Context(), c.Param("id"), userID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		case errors.Is(err, service.ErrNotLeader):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the team leader can do this"})
		case errors.Is(err, service.ErrInviteNotAvailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "invite delivery unavailable"})
		default:
			h.logger.Error("send invite failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send invite"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invite_sent"})
}
