package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardsnipe/engine/internal/deals"
	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/services"
	"github.com/cardsnipe/engine/internal/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBuildStateDerivesListingFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	endSoon := now.Add(3 * time.Minute)

	snap := services.Snapshot{
		Mode: services.ModeLive,
		Listings: []models.Listing{
			{ID: "1", IsAuction: true, AuctionEndTime: &endSoon, DealScore: 45},
			{ID: "2", DealScore: 10},
		},
		ScanCount:       60,
		ScanWindowStart: now.Add(-30 * time.Second),
	}

	state := BuildState(snap, now)
	if len(state.Listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(state.Listings))
	}

	auction := state.Listings[0]
	if auction.RemainingTime != "3m 0s" {
		t.Errorf("RemainingTime = %q, want %q", auction.RemainingTime, "3m 0s")
	}
	if auction.Urgency != deals.UrgencyCritical {
		t.Errorf("Urgency = %q, want %q", auction.Urgency, deals.UrgencyCritical)
	}
	if auction.ScoreBand != deals.BandHigh {
		t.Errorf("ScoreBand = %q, want %q", auction.ScoreBand, deals.BandHigh)
	}

	buyNow := state.Listings[1]
	if buyNow.RemainingTime != "" || buyNow.Urgency != deals.UrgencyNone {
		t.Errorf("buy-now listing got countdown fields: %+v", buyNow)
	}
	if buyNow.ScoreBand != deals.BandLow {
		t.Errorf("ScoreBand = %q, want %q", buyNow.ScoreBand, deals.BandLow)
	}

	if state.ScanRate != "2.00" {
		t.Errorf("ScanRate = %q, want %q", state.ScanRate, "2.00")
	}
}

// Live-mode listings pass through untouched; fallback listings go through the
// local filter pipeline.
func TestBuildStateFiltersOnlyInFallback(t *testing.T) {
	now := time.Now()
	listings := []models.Listing{
		{ID: "1", Sport: models.SportBasketball, DealScore: 45},
		{ID: "2", Sport: models.SportBaseball, DealScore: 30},
	}
	filters := models.DefaultDealFilters()
	filters.Sport = "basketball"

	live := BuildState(services.Snapshot{Mode: services.ModeLive, Listings: listings, Filters: filters}, now)
	if len(live.Listings) != 2 {
		t.Errorf("live mode filtered locally: got %d listings, want 2", len(live.Listings))
	}

	fallback := BuildState(services.Snapshot{Mode: services.ModeFallback, Listings: listings, Filters: filters}, now)
	if len(fallback.Listings) != 1 || fallback.Listings[0].ID != "1" {
		t.Errorf("fallback listings = %+v, want only the basketball one", fallback.Listings)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &services.ValidationError{Msg: "bad input"}, 400},
		{"in flight", services.ErrActionInFlight, 409},
		{"upstream", &upstream.APIError{StatusCode: 503, Message: "down"}, 502},
		{"unknown", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
