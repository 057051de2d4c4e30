package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/services"
	"github.com/cardsnipe/engine/internal/upstream"
)

// respondError maps the engine's failure taxonomy onto HTTP statuses:
// validation failures never reached the service (400), duplicate in-flight
// submissions are rejected (409), and remote failures surface as 502 so the
// dashboard can tell them apart from engine bugs.
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
		return
	}

	if errors.Is(err, services.ErrActionInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
