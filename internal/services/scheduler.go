package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cardsnipe/engine/internal/deals"
	"github.com/cardsnipe/engine/internal/metrics"
	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/upstream"
)

const (
	defaultRefreshInterval  = 30 * time.Second
	defaultTickInterval     = 1 * time.Second
	defaultScanPollInterval = 5 * time.Second
)

// SchedulerConfig overrides the scheduler's intervals; zero values keep the
// defaults. Tests shrink these to milliseconds.
type SchedulerConfig struct {
	RefreshInterval  time.Duration
	TickInterval     time.Duration
	ScanPollInterval time.Duration
}

// Scheduler owns every timer in the engine: the 30s full refresh, the 1s
// countdown tick, the 5s scan-count poll and the one-shot settings fetch.
// A refresh cycle that fails for any reason switches the store to fallback
// mode with a freshly synthesized dataset; a cycle that succeeds adopts the
// server's data verbatim. Failures are absorbed until the next tick, never
// retried sub-cycle.
type Scheduler struct {
	client *upstream.Client
	store  *Store
	gen    *deals.Generator

	refreshInterval  time.Duration
	tickInterval     time.Duration
	scanPollInterval time.Duration

	mu         sync.Mutex
	refreshing bool

	onUpdate func()

	ctx       context.Context
	cancel    context.CancelFunc
	refreshCh chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler over the given client and store. gen may
// be nil, in which case a time-seeded generator is used.
func NewScheduler(client *upstream.Client, store *Store, gen *deals.Generator, cfg SchedulerConfig) *Scheduler {
	if gen == nil {
		gen = deals.NewGenerator(nil)
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.ScanPollInterval <= 0 {
		cfg.ScanPollInterval = defaultScanPollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		client:           client,
		store:            store,
		gen:              gen,
		refreshInterval:  cfg.RefreshInterval,
		tickInterval:     cfg.TickInterval,
		scanPollInterval: cfg.ScanPollInterval,
		ctx:              ctx,
		cancel:           cancel,
		refreshCh:        make(chan struct{}, 1),
	}
}

// OnUpdate registers a hook invoked after every commit and countdown tick,
// used to push fresh state to dashboard clients. Must be set before Start.
func (s *Scheduler) OnUpdate(fn func()) {
	s.onUpdate = fn
}

// Start launches all timer loops and the one-shot settings fetch.
func (s *Scheduler) Start() {
	log.Printf("Scheduler: starting (refresh %v, tick %v, scan poll %v)",
		s.refreshInterval, s.tickInterval, s.scanPollInterval)

	s.wg.Add(1)
	go s.refreshLoop()

	s.wg.Add(1)
	go s.tickLoop()

	s.wg.Add(1)
	go s.scanLoop()

	s.wg.Add(1)
	go s.fetchSettings()
}

// Stop tears down every loop. After Stop returns no timer fires again and a
// network call still in flight cannot mutate the store.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Println("Scheduler: stopping...")
		s.cancel()
	})
	s.wg.Wait()
}

// RequestRefresh triggers an out-of-band refresh cycle. Requests coalesce:
// if one is already queued or running, this is a no-op.
func (s *Scheduler) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) stopped() bool {
	return s.ctx.Err() != nil
}

func (s *Scheduler) notify() {
	if s.onUpdate != nil && !s.stopped() {
		s.onUpdate()
	}
}

// refreshLoop runs the full refresh cycle: immediately on start, then on
// every interval tick or out-of-band request.
func (s *Scheduler) refreshLoop() {
	defer s.wg.Done()

	s.refresh()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refresh()
		case <-s.refreshCh:
			s.refresh()
		}
	}
}

// refresh performs one full cycle: listings and stats fetched concurrently,
// committed together only after both resolve.
func (s *Scheduler) refresh() {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		log.Println("Scheduler: refresh already in flight, skipping cycle")
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	filters := s.store.Snapshot().Filters

	var (
		listings []models.Listing
		stats    *models.DealStats
		listErr  error
		statsErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		listings, listErr = s.client.GetDeals(s.ctx, filters)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = s.client.GetStats(s.ctx)
	}()
	wg.Wait()

	// A call resolving after disposal must not mutate state.
	if s.stopped() {
		return
	}

	now := time.Now()
	if listErr != nil || statsErr != nil {
		if listErr != nil {
			log.Printf("Scheduler: deals fetch failed: %v", listErr)
		}
		if statsErr != nil {
			log.Printf("Scheduler: stats fetch failed: %v", statsErr)
		}
		s.enterFallback(now)
		metrics.RefreshCyclesTotal.WithLabelValues("fallback").Inc()
	} else {
		if s.store.Mode() == ModeFallback {
			log.Println("Scheduler: service reachable again, returning to live mode")
		}
		s.store.CommitRefresh(ModeLive, listings, *stats, now)
		metrics.RefreshCyclesTotal.WithLabelValues("live").Inc()
		metrics.FallbackMode.Set(0)
	}

	s.notify()
}

// enterFallback synthesizes a fresh offline dataset and recomputes stats
// locally. Invoked once per failed cycle, never per countdown tick.
func (s *Scheduler) enterFallback(now time.Time) {
	if s.store.Mode() != ModeFallback {
		log.Println("Scheduler: service unreachable, entering fallback mode")
	}

	listings := s.gen.Listings(now)
	stats := deals.AggregateStats(listings, now)
	s.store.CommitRefresh(ModeFallback, listings, stats, now)

	metrics.FallbackMode.Set(1)
	metrics.FallbackGenerationsTotal.Inc()
}

// tickLoop forces derived-field recomputation every second. It performs no
// network I/O and reads only committed state, so it is safe to run
// uncoordinated with the refresh cycle.
func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.notify()
		}
	}
}

// scanLoop polls the scanner's evaluated-listings counter independently of
// the refresh cycle and mode.
func (s *Scheduler) scanLoop() {
	defer s.wg.Done()

	s.pollScanCount()

	ticker := time.NewTicker(s.scanPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.pollScanCount()
		}
	}
}

func (s *Scheduler) pollScanCount() {
	count, err := s.client.GetScanCount(s.ctx)
	if err != nil {
		log.Printf("Scheduler: scan count poll failed: %v", err)
		return
	}
	if s.stopped() {
		return
	}
	s.store.UpdateScan(count.Count, count.ResetAt, time.Now())
	metrics.ScanCount.Set(float64(count.Count))
}

// fetchSettings loads the settings record once at startup. A failure is
// absorbed; the cached defaults remain in place.
func (s *Scheduler) fetchSettings() {
	defer s.wg.Done()

	settings, err := s.client.GetSettings(s.ctx)
	if err != nil {
		log.Printf("Scheduler: settings fetch failed: %v", err)
		return
	}
	if s.stopped() {
		return
	}
	s.store.SetSettings(*settings)
}
