package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/deals"
	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/services"
)

// ListingView is a listing plus its clock-derived display attributes.
type ListingView struct {
	models.Listing
	RemainingTime string          `json:"remainingTime,omitempty"`
	Urgency       deals.Urgency   `json:"urgency"`
	ScoreBand     deals.ScoreBand `json:"scoreBand"`
}

// StateView is the full dashboard state rendered against one clock reading.
type StateView struct {
	Mode        services.Mode         `json:"mode"`
	Listings    []ListingView         `json:"listings"`
	Stats       models.DealStats      `json:"stats"`
	Settings    models.Settings       `json:"settings"`
	Filters     models.DealFilters    `json:"filters"`
	PriceStats  models.PriceDataStats `json:"priceStats"`
	ScanCount   int                   `json:"scanCount"`
	ScanRate    string                `json:"scanRate"`
	LastRefresh time.Time             `json:"lastRefresh"`
}

// BuildState renders a committed snapshot for display. In fallback mode the
// active filters are applied locally; in live mode the server already did.
func BuildState(snap services.Snapshot, now time.Time) StateView {
	listings := snap.Listings
	if snap.Mode == services.ModeFallback {
		listings = deals.FilterListings(listings, snap.Filters)
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		view := ListingView{
			Listing:   l,
			Urgency:   deals.UrgencyNone,
			ScoreBand: deals.DealScoreBand(l.DealScore),
		}
		if l.IsAuction && l.AuctionEndTime != nil {
			view.RemainingTime = deals.RemainingTime(*l.AuctionEndTime, now)
			view.Urgency = deals.UrgencyClass(*l.AuctionEndTime, now)
		}
		views = append(views, view)
	}

	return StateView{
		Mode:        snap.Mode,
		Listings:    views,
		Stats:       snap.Stats,
		Settings:    snap.Settings,
		Filters:     snap.Filters,
		PriceStats:  snap.PriceStats,
		ScanCount:   snap.ScanCount,
		ScanRate:    deals.ScanRate(snap.ScanCount, snap.ScanWindowStart, now),
		LastRefresh: snap.LastRefresh,
	}
}

// StateHandler serves the committed engine state to the dashboard.
type StateHandler struct {
	store     *services.Store
	scheduler *services.Scheduler
}

func NewStateHandler(store *services.Store, scheduler *services.Scheduler) *StateHandler {
	return &StateHandler{store: store, scheduler: scheduler}
}

// GetState returns the current snapshot with derived fields.
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, BuildState(h.store.Snapshot(), time.Now()))
}

// SetFilters replaces the active listing filters and triggers an out-of-band
// refresh so live mode picks them up immediately.
func (h *StateHandler) SetFilters(c *gin.Context) {
	var filters models.DealFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filters.MinDealScore < 0 || filters.MinDealScore > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minDealScore must be between 0 and 100"})
		return
	}

	h.store.SetFilters(filters)
	h.scheduler.RequestRefresh()
	c.JSON(http.StatusOK, gin.H{"filters": filters})
}

// Refresh triggers an out-of-band full refresh cycle.
func (h *StateHandler) Refresh(c *gin.Context) {
	h.scheduler.RequestRefresh()
	c.JSON(http.StatusAccepted, gin.H{"message": "refresh triggered"})
}

// Health is the liveness probe.
func (h *StateHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   h.store.Mode(),
	})
}
