package services

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardsnipe/engine/internal/deals"
	"github.com/cardsnipe/engine/internal/upstream"
)

// fakeService stands in for the remote catalog. Flip failing to simulate an
// outage; every endpoint then returns 503.
type fakeService struct {
	failing       atomic.Bool
	dealRequests  atomic.Int64
	lastDealSport atomic.Value
	server        *httptest.Server
}

func newFakeService() *fakeService {
	f := &fakeService{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"error":"down"}`))
			return
		}
		switch r.URL.Path {
		case "/api/deals":
			f.dealRequests.Add(1)
			f.lastDealSport.Store(r.URL.Query().Get("sport"))
			w.Write([]byte(`{"success":true,"data":[{"id":"live-1","title":"LeBron","currentPrice":100,"marketValue":200}]}`))
		case "/api/stats":
			w.Write([]byte(`{"success":true,"data":{"total_deals":1,"hot_deals":1}}`))
		case "/api/scan-count":
			w.Write([]byte(`{"success":true,"data":{"count":42}}`))
		case "/api/settings":
			w.Write([]byte(`{"success":true,"data":{"minPrice":5,"maxPrice":300,"minDealScore":20}}`))
		default:
			w.Write([]byte(`{"success":true,"data":null}`))
		}
	}))
	return f
}

func (f *fakeService) Close() { f.server.Close() }

func newTestScheduler(f *fakeService, store *Store) *Scheduler {
	client := upstream.New(f.server.URL)
	gen := deals.NewGenerator(rand.New(rand.NewSource(1)))
	return NewScheduler(client, store, gen, SchedulerConfig{
		RefreshInterval:  time.Hour, // timers idle; tests drive cycles directly
		TickInterval:     time.Hour,
		ScanPollInterval: time.Hour,
	})
}

func TestRefreshCommitsLiveData(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	s.refresh()

	snap := store.Snapshot()
	if snap.Mode != ModeLive {
		t.Fatalf("Mode = %q, want %q", snap.Mode, ModeLive)
	}
	if len(snap.Listings) != 1 || snap.Listings[0].ID != "live-1" {
		t.Errorf("Listings = %+v, want the server's listing", snap.Listings)
	}
	if snap.Stats.TotalDeals != 1 {
		t.Errorf("Stats = %+v, want server stats", snap.Stats)
	}
	if snap.LastRefresh.IsZero() {
		t.Error("LastRefresh not set")
	}
}

func TestRefreshFailureEntersFallback(t *testing.T) {
	f := newFakeService()
	defer f.Close()
	f.failing.Store(true)

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	s.refresh()

	snap := store.Snapshot()
	if snap.Mode != ModeFallback {
		t.Fatalf("Mode = %q, want %q", snap.Mode, ModeFallback)
	}
	if len(snap.Listings) == 0 {
		t.Fatal("fallback cycle committed no listings")
	}
	// Stats are recomputed locally from the synthesized set.
	if snap.Stats.TotalDeals != len(snap.Listings) {
		t.Errorf("Stats.TotalDeals = %d, want %d", snap.Stats.TotalDeals, len(snap.Listings))
	}
	// Synthesized listings come out sorted by score.
	for i := 1; i < len(snap.Listings); i++ {
		if snap.Listings[i].DealScore > snap.Listings[i-1].DealScore {
			t.Fatalf("fallback listings not sorted by score at index %d", i)
		}
	}
}

// Each failed cycle synthesizes a fresh dataset; the previous one is not reused.
func TestFallbackRegeneratesPerCycle(t *testing.T) {
	f := newFakeService()
	defer f.Close()
	f.failing.Store(true)

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	s.refresh()
	first := store.Snapshot().Listings
	s.refresh()
	second := store.Snapshot().Listings

	if first[0].ID == second[0].ID {
		t.Error("consecutive fallback cycles reused the same dataset")
	}
}

func TestRefreshRecoversToLive(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	f.failing.Store(true)
	s.refresh()
	if store.Mode() != ModeFallback {
		t.Fatalf("Mode = %q, want fallback after outage", store.Mode())
	}

	f.failing.Store(false)
	s.refresh()

	snap := store.Snapshot()
	if snap.Mode != ModeLive {
		t.Fatalf("Mode = %q, want live after recovery", snap.Mode)
	}
	if len(snap.Listings) != 1 || snap.Listings[0].ID != "live-1" {
		t.Errorf("Listings = %+v, fallback data survived recovery", snap.Listings)
	}
}

func TestRefreshUsesActiveFilters(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	filters := store.Snapshot().Filters
	filters.Sport = "baseball"
	store.SetFilters(filters)

	s := newTestScheduler(f, store)
	defer s.Stop()
	s.refresh()

	if got, _ := f.lastDealSport.Load().(string); got != "baseball" {
		t.Errorf("deals query sport = %q, want %q", got, "baseball")
	}
}

func TestPollScanCount(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	s.pollScanCount()

	snap := store.Snapshot()
	if snap.ScanCount != 42 {
		t.Errorf("ScanCount = %d, want 42", snap.ScanCount)
	}
	if snap.ScanWindowStart.IsZero() {
		t.Error("scan window not opened on first poll")
	}
}

func TestPollScanCountFailureKeepsState(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	s := newTestScheduler(f, store)
	defer s.Stop()

	s.pollScanCount()
	f.failing.Store(true)
	s.pollScanCount()

	if got := store.Snapshot().ScanCount; got != 42 {
		t.Errorf("ScanCount = %d after failed poll, want 42", got)
	}
}

func TestStoppedSchedulerCommitsNothing(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	s := newTestScheduler(f, store)
	s.Stop()

	s.refresh()

	snap := store.Snapshot()
	if len(snap.Listings) != 0 || !snap.LastRefresh.IsZero() {
		t.Errorf("stopped scheduler mutated the store: %+v", snap)
	}
}

func TestRequestRefreshCoalesces(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	s := newTestScheduler(f, NewStore())
	defer s.Stop()

	// Not started, so nothing drains the channel; extra requests must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.RequestRefresh()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestRefresh blocked")
	}
}

func TestStartRunsInitialCycles(t *testing.T) {
	f := newFakeService()
	defer f.Close()

	store := NewStore()
	client := upstream.New(f.server.URL)
	s := NewScheduler(client, store, deals.NewGenerator(rand.New(rand.NewSource(1))), SchedulerConfig{
		RefreshInterval:  time.Hour,
		TickInterval:     time.Hour,
		ScanPollInterval: time.Hour,
	})

	var updates atomic.Int64
	s.OnUpdate(func() { updates.Add(1) })
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := store.Snapshot()
		if len(snap.Listings) > 0 && snap.ScanCount == 42 && snap.Settings.MinDealScore == 20 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.Stop()

	snap := store.Snapshot()
	if len(snap.Listings) == 0 {
		t.Error("initial refresh never committed")
	}
	if snap.ScanCount != 42 {
		t.Errorf("ScanCount = %d, initial scan poll never landed", snap.ScanCount)
	}
	if snap.Settings.MinDealScore != 20 {
		t.Errorf("Settings = %+v, one-shot settings fetch never landed", snap.Settings)
	}
	if updates.Load() == 0 {
		t.Error("OnUpdate hook never fired")
	}
}
