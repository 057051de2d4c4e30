package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/services"
)

// PlayerHandler manages the monitored-players panel.
type PlayerHandler struct {
	gateway *services.Gateway
}

func NewPlayerHandler(gateway *services.Gateway) *PlayerHandler {
	return &PlayerHandler{gateway: gateway}
}

// ListPlayers fetches the monitored player list from the service.
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	players, err := h.gateway.LoadPlayers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

// AddPlayer creates a monitored player.
func (h *PlayerHandler) AddPlayer(c *gin.Context) {
	var req struct {
		Name  string       `json:"name" binding:"required"`
		Sport models.Sport `json:"sport" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.gateway.AddPlayer(c.Request.Context(), req.Name, req.Sport)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// TogglePlayer flips a player's active flag.
func (h *PlayerHandler) TogglePlayer(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.gateway.TogglePlayer(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// DeletePlayer removes a player from monitoring.
func (h *PlayerHandler) DeletePlayer(c *gin.Context) {
	if err := h.gateway.DeletePlayer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// ListTeams returns the importable team catalog for a sport.
func (h *PlayerHandler) ListTeams(c *gin.Context) {
	teams, err := h.gateway.Teams(c.Request.Context(), models.Sport(c.Query("sport")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// ImportTeam creates players for a team's roster.
func (h *PlayerHandler) ImportTeam(c *gin.Context) {
	var req struct {
		Sport models.Sport `json:"sport" binding:"required"`
		Team  string       `json:"team" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	players, err := h.gateway.ImportTeam(c.Request.Context(), req.Sport, req.Team)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(players), "players": players})
}
