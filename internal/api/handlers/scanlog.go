package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/deals"
	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/upstream"
)

// ScanLogHandler serves the scanner's audit trail. Entries come from the
// service; sorting happens locally so the dashboard can reorder by any
// column without another fetch.
type ScanLogHandler struct {
	client *upstream.Client
}

func NewScanLogHandler(client *upstream.Client) *ScanLogHandler {
	return &ScanLogHandler{client: client}
}

// GetScanLog fetches recent entries, optionally filtered by outcome and
// sport, sorted by the requested column.
func (h *ScanLogHandler) GetScanLog(c *gin.Context) {
	query := upstream.ScanLogQuery{
		Outcome: models.ScanOutcome(c.Query("outcome")),
		Sport:   models.Sport(c.Query("sport")),
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		query.Limit = n
	}

	entries, err := h.client.GetScanLog(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	if sortBy := c.Query("sortBy"); sortBy != "" {
		deals.SortScanLog(entries, deals.ScanLogField(sortBy), c.Query("dir") == "desc")
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
