// Package services contains the engine's stateful core: the committed-state
// store, the sync scheduler that keeps it fresh (or degrades it to offline
// data), and the gateway serializing user-initiated mutations.
package services

import (
	"sync"
	"time"

	"github.com/cardsnipe/engine/internal/models"
)

// Mode is the engine's operating state.
type Mode string

const (
	// ModeLive means the remote service is reachable and authoritative.
	ModeLive Mode = "live"
	// ModeFallback means the engine serves locally synthesized data.
	ModeFallback Mode = "fallback"
)

// Snapshot is one consistent view of the committed state.
type Snapshot struct {
	Mode            Mode
	Listings        []models.Listing
	Stats           models.DealStats
	Settings        models.Settings
	Filters         models.DealFilters
	Players         []models.Player
	PriceStats      models.PriceDataStats
	ScanCount       int
	ScanWindowStart time.Time
	LastRefresh     time.Time
}

// Store is the single source of truth for the dashboard. It is mutated only
// by the scheduler's commit step and the gateway's post-success patches;
// everything else reads copies via Snapshot.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore returns a store in the optimistic initial state: live mode,
// default filters, and the dashboard's default settings.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{
			Mode:     ModeLive,
			Filters:  models.DefaultDealFilters(),
			Settings: models.Settings{MinPrice: 0, MaxPrice: 500, MinDealScore: 10},
		},
	}
}

// Snapshot returns a copy of the committed state. Slices are copied so
// readers never alias the store's own data.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	snap.Listings = append([]models.Listing(nil), s.snap.Listings...)
	snap.Players = append([]models.Player(nil), s.snap.Players...)
	return snap
}

// Mode returns the current operating mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Mode
}

// CommitRefresh atomically adopts the result of one full refresh cycle:
// mode, listings and stats change together so no torn view is observable.
func (s *Store) CommitRefresh(mode Mode, listings []models.Listing, stats models.DealStats, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Mode = mode
	s.snap.Listings = listings
	s.snap.Stats = stats
	s.snap.LastRefresh = at
}

// ClearDeals empties listings and stats without touching the mode. Used by
// the optimistic clear-all-data path so stale numbers never linger.
func (s *Store) ClearDeals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Listings = nil
	s.snap.Stats = models.DealStats{}
}

// SetSettings replaces the cached settings record.
func (s *Store) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Settings = settings
}

// SetFilters replaces the active listing filters.
func (s *Store) SetFilters(filters models.DealFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Filters = filters
}

// UpdateScan records a scan-count poll result. The rate window starts at the
// first observation and rewinds only when the server signals a counter reset.
func (s *Store) UpdateScan(count int, resetAt *time.Time, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ScanCount = count
	if s.snap.ScanWindowStart.IsZero() {
		s.snap.ScanWindowStart = now
	}
	if resetAt != nil && resetAt.After(s.snap.ScanWindowStart) {
		s.snap.ScanWindowStart = *resetAt
	}
}

// SetPlayers replaces the cached player list.
func (s *Store) SetPlayers(players []models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Players = players
}

// AppendPlayer adds a newly created player to the cache.
func (s *Store) AppendPlayer(player models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Players = append(s.snap.Players, player)
}

// AppendPlayers adds a batch of players (team import) to the cache.
func (s *Store) AppendPlayers(players []models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Players = append(s.snap.Players, players...)
}

// ReplacePlayer swaps the cached record matching the updated player's ID.
func (s *Store) ReplacePlayer(updated models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.snap.Players {
		if p.ID == updated.ID {
			s.snap.Players[i] = updated
			return
		}
	}
}

// RemovePlayer drops the cached record with the given ID.
func (s *Store) RemovePlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := s.snap.Players[:0]
	for _, p := range s.snap.Players {
		if p.ID != id {
			players = append(players, p)
		}
	}
	s.snap.Players = players
}

// SetPriceStats replaces the cached price-data aggregate.
func (s *Store) SetPriceStats(stats models.PriceDataStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PriceStats = stats
}

// ClearPriceStats invalidates the price-data aggregate. Called as soon as a
// delete-all-price-data action is issued.
func (s *Store) ClearPriceStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PriceStats = models.PriceDataStats{}
}
