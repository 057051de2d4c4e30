package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/services"
)

// ActionHandler exposes the remaining mutating operations: settings, issue
// reports, price-data management and the destructive clear-all.
type ActionHandler struct {
	store   *services.Store
	gateway *services.Gateway
}

func NewActionHandler(store *services.Store, gateway *services.Gateway) *ActionHandler {
	return &ActionHandler{store: store, gateway: gateway}
}

// GetSettings returns the cached settings record.
func (h *ActionHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot().Settings)
}

// UpdateSettings writes the settings record through to the service.
func (h *ActionHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.gateway.UpdateSettings(c.Request.Context(), settings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// SubmitReport files an incorrect-match report for a listing.
func (h *ActionHandler) SubmitReport(c *gin.Context) {
	var report models.ReportSubmission
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gateway.SubmitReport(c.Request.Context(), report); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report submitted"})
}

// UploadPriceData accepts a multipart price-reference file for a sport.
func (h *ActionHandler) UploadPriceData(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	sport := models.Sport(c.PostForm("sport"))

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	if err := h.gateway.UploadPriceData(c.Request.Context(), sport, fileHeader.Filename, file); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "price data uploaded"})
}

// GetPriceDataStats returns counts of uploaded price-reference rows.
func (h *ActionHandler) GetPriceDataStats(c *gin.Context) {
	stats, err := h.gateway.PriceDataStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeletePriceData removes all uploaded price data.
func (h *ActionHandler) DeletePriceData(c *gin.Context) {
	if err := h.gateway.DeletePriceData(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "price data deleted"})
}

// ClearData deletes every stored listing server-side. Local state is emptied
// immediately either way.
func (h *ActionHandler) ClearData(c *gin.Context) {
	deleted, err := h.gateway.ClearData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
