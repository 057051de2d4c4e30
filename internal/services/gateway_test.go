package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/upstream"
)

// newTestGateway wires a gateway over a canned-response server. The handler's
// request count exposes whether anything reached the wire.
func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *Store, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := upstream.New(server.URL)
	store := NewStore()
	scheduler := NewScheduler(client, store, nil, SchedulerConfig{
		RefreshInterval:  time.Hour,
		TickInterval:     time.Hour,
		ScanPollInterval: time.Hour,
	})
	t.Cleanup(scheduler.Stop)

	gateway := NewGateway(client, store, scheduler)
	gateway.refreshDelay = 10 * time.Millisecond
	return gateway, store, &requests
}

func playerResponse(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte(`{"success":true,"data":{"id":"p1","name":"LeBron James","sport":"basketball","active":true}}`))
}

func TestAddPlayerPatchesCache(t *testing.T) {
	gateway, store, _ := newTestGateway(t, playerResponse)

	player, err := gateway.AddPlayer(context.Background(), "LeBron James", models.SportBasketball)
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if player.ID != "p1" {
		t.Errorf("player = %+v, want stored record", player)
	}

	players := store.Snapshot().Players
	if len(players) != 1 || players[0].ID != "p1" {
		t.Errorf("cached players = %+v, want the new record appended", players)
	}
}

func TestAddPlayerValidation(t *testing.T) {
	gateway, _, requests := newTestGateway(t, playerResponse)

	tests := []struct {
		name   string
		player string
		sport  models.Sport
	}{
		{"empty name", "", models.SportBasketball},
		{"whitespace name", "   ", models.SportBasketball},
		{"unknown sport", "LeBron James", "hockey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.AddPlayer(context.Background(), tt.player, tt.sport)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
		})
	}

	// Rejected input never reaches the service.
	if n := requests.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestActionInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	gateway, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		playerResponse(w, r)
	})

	firstDone := make(chan error, 1)
	go func() {
		_, err := gateway.AddPlayer(context.Background(), "LeBron James", models.SportBasketball)
		firstDone <- err
	}()

	// Wait for the first call to take the guard.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gateway.mu.Lock()
		held := gateway.inFlight["add_player"]
		gateway.mu.Unlock()
		if held {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := gateway.AddPlayer(context.Background(), "Luka Doncic", models.SportBasketball); !errors.Is(err, ErrActionInFlight) {
		t.Errorf("second submission error = %v, want ErrActionInFlight", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Errorf("first submission failed: %v", err)
	}

	// Guard released; the action can run again.
	if _, err := gateway.AddPlayer(context.Background(), "Luka Doncic", models.SportBasketball); err != nil {
		t.Errorf("resubmission after release failed: %v", err)
	}
}

func TestTogglePlayerGuardIsPerPlayer(t *testing.T) {
	release := make(chan struct{})
	gateway, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/p1") {
			<-release
		}
		playerResponse(w, r)
	})
	defer close(release)

	go gateway.TogglePlayer(context.Background(), "p1", false)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gateway.mu.Lock()
		held := gateway.inFlight["toggle_player:p1"]
		gateway.mu.Unlock()
		if held {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A different player toggles freely while p1 is pending.
	if _, err := gateway.TogglePlayer(context.Background(), "p2", false); err != nil {
		t.Errorf("toggle of unrelated player failed: %v", err)
	}
	if _, err := gateway.TogglePlayer(context.Background(), "p1", false); !errors.Is(err, ErrActionInFlight) {
		t.Errorf("duplicate toggle error = %v, want ErrActionInFlight", err)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	gateway, _, requests := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"minPrice":10,"maxPrice":100,"minDealScore":5}}`))
	})

	tests := []struct {
		name     string
		settings models.Settings
	}{
		{"negative min price", models.Settings{MinPrice: -1, MaxPrice: 100}},
		{"max below min", models.Settings{MinPrice: 100, MaxPrice: 50}},
		{"score above 100", models.Settings{MaxPrice: 100, MinDealScore: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.UpdateSettings(context.Background(), tt.settings)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
		})
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}

	// A valid write caches the service's stored copy, not the submitted one.
	stored, err := gateway.UpdateSettings(context.Background(), models.Settings{MinPrice: 10, MaxPrice: 100, MinDealScore: 5})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if got := gateway.store.Snapshot().Settings; got != *stored {
		t.Errorf("cached settings = %+v, want %+v", got, *stored)
	}
}

func TestSubmitReportValidation(t *testing.T) {
	gateway, _, requests := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	err := gateway.SubmitReport(context.Background(), models.ReportSubmission{Issue: models.IssueWrongPrice})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("missing listing id error = %v, want ValidationError", err)
	}

	err = gateway.SubmitReport(context.Background(), models.ReportSubmission{ListingID: "l1", Issue: "bogus"})
	if !errors.As(err, &vErr) {
		t.Errorf("unknown issue error = %v, want ValidationError", err)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}

	if err := gateway.SubmitReport(context.Background(), models.ReportSubmission{ListingID: "l1", Issue: models.IssueWrongPrice}); err != nil {
		t.Errorf("valid report failed: %v", err)
	}
}

func TestClearDataOptimisticallyEmptiesStore(t *testing.T) {
	gateway, store, _ := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"deleted":17}`))
	})
	store.CommitRefresh(ModeLive, []models.Listing{{ID: "1"}}, models.DealStats{TotalDeals: 1}, time.Now())

	deleted, err := gateway.ClearData(context.Background())
	if err != nil {
		t.Fatalf("ClearData failed: %v", err)
	}
	if deleted != 17 {
		t.Errorf("deleted = %d, want 17", deleted)
	}

	snap := store.Snapshot()
	if len(snap.Listings) != 0 || snap.Stats != (models.DealStats{}) {
		t.Errorf("store not cleared: %+v", snap)
	}
}

// Even when the delete fails, local state is emptied and a refresh is still
// scheduled so the dashboard converges on the service's real state.
func TestClearDataFailureStillClearsAndReschedules(t *testing.T) {
	gateway, store, _ := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"down"}`))
	})
	store.CommitRefresh(ModeLive, []models.Listing{{ID: "1"}}, models.DealStats{TotalDeals: 1}, time.Now())

	_, err := gateway.ClearData(context.Background())
	var apiErr *upstream.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}

	if got := store.Snapshot().Listings; len(got) != 0 {
		t.Errorf("listings = %+v, want cleared despite failure", got)
	}

	// The delayed refresh request lands on the scheduler's channel.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(gateway.scheduler.refreshCh) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("no refresh was requested after clear")
}

func TestDeletePriceDataInvalidatesAggregate(t *testing.T) {
	gateway, store, _ := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	store.SetPriceStats(models.PriceDataStats{Total: 1200})

	if err := gateway.DeletePriceData(context.Background()); err != nil {
		t.Fatalf("DeletePriceData failed: %v", err)
	}
	if got := store.Snapshot().PriceStats; got.Total != 0 {
		t.Errorf("price stats = %+v, want invalidated", got)
	}
}

func TestImportTeamAppendsRoster(t *testing.T) {
	gateway, store, _ := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":"p1","name":"Shohei Ohtani","sport":"baseball","active":true},
			{"id":"p2","name":"Mookie Betts","sport":"baseball","active":true}
		]}`))
	})

	players, err := gateway.ImportTeam(context.Background(), models.SportBaseball, "Dodgers")
	if err != nil {
		t.Fatalf("ImportTeam failed: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2", len(players))
	}
	if got := store.Snapshot().Players; len(got) != 2 {
		t.Errorf("cached players = %+v, want the imported roster", got)
	}
}
