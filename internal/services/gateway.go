package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cardsnipe/engine/internal/models"
	"github.com/cardsnipe/engine/internal/upstream"
)

// ErrActionInFlight is returned when the same mutating action is submitted
// again before the first submission resolves.
var ErrActionInFlight = errors.New("action already in progress")

// ValidationError rejects a request before anything is sent to the service.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

const clearRefreshDelay = 500 * time.Millisecond

// Gateway serializes user-initiated mutating operations against the remote
// service. Each action carries a single-flight guard, validates input before
// sending anything, and on success patches local state directly instead of
// forcing a full resync.
type Gateway struct {
	client    *upstream.Client
	store     *Store
	scheduler *Scheduler

	// refreshDelay is how long after an optimistic clear the follow-up
	// refresh fires. Shortened in tests.
	refreshDelay time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewGateway creates a gateway that patches store and nudges scheduler for
// out-of-band refreshes.
func NewGateway(client *upstream.Client, store *Store, scheduler *Scheduler) *Gateway {
	return &Gateway{
		client:       client,
		store:        store,
		scheduler:    scheduler,
		refreshDelay: clearRefreshDelay,
		inFlight:     make(map[string]bool),
	}
}

// begin acquires the single-flight guard for an action.
func (g *Gateway) begin(action string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[action] {
		return ErrActionInFlight
	}
	g.inFlight[action] = true
	return nil
}

func (g *Gateway) end(action string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, action)
}

func validSport(sport models.Sport) bool {
	return sport == models.SportBasketball || sport == models.SportBaseball
}

// LoadPlayers fetches the player list and caches it. Called when the players
// panel opens; not part of any polling loop.
func (g *Gateway) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := g.client.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}
	g.store.SetPlayers(players)
	return players, nil
}

// AddPlayer creates a monitored player and appends the stored record locally.
func (g *Gateway) AddPlayer(ctx context.Context, name string, sport models.Sport) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "player name is required"}
	}
	if !validSport(sport) {
		return nil, &ValidationError{Msg: "unknown sport"}
	}

	if err := g.begin("add_player"); err != nil {
		return nil, err
	}
	defer g.end("add_player")

	player, err := g.client.AddPlayer(ctx, name, sport)
	if err != nil {
		return nil, err
	}
	g.store.AppendPlayer(*player)
	return player, nil
}

// TogglePlayer flips a player's active flag and patches the cached record.
func (g *Gateway) TogglePlayer(ctx context.Context, id string, active bool) (*models.Player, error) {
	if id == "" {
		return nil, &ValidationError{Msg: "player id is required"}
	}

	action := "toggle_player:" + id
	if err := g.begin(action); err != nil {
		return nil, err
	}
	defer g.end(action)

	player, err := g.client.TogglePlayer(ctx, id, active)
	if err != nil {
		return nil, err
	}
	g.store.ReplacePlayer(*player)
	return player, nil
}

// DeletePlayer removes a player and drops it from the cache.
func (g *Gateway) DeletePlayer(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Msg: "player id is required"}
	}

	action := "delete_player:" + id
	if err := g.begin(action); err != nil {
		return err
	}
	defer g.end(action)

	if err := g.client.DeletePlayer(ctx, id); err != nil {
		return err
	}
	g.store.RemovePlayer(id)
	return nil
}

// Teams fetches the importable team catalog. Read-only; no guard needed.
func (g *Gateway) Teams(ctx context.Context, sport models.Sport) ([]models.Team, error) {
	return g.client.GetTeams(ctx, sport)
}

// ImportTeam creates players for a team's roster server-side and appends the
// returned players locally.
func (g *Gateway) ImportTeam(ctx context.Context, sport models.Sport, team string) ([]models.Player, error) {
	if strings.TrimSpace(team) == "" {
		return nil, &ValidationError{Msg: "team is required"}
	}
	if !validSport(sport) {
		return nil, &ValidationError{Msg: "unknown sport"}
	}

	if err := g.begin("import_team"); err != nil {
		return nil, err
	}
	defer g.end("import_team")

	players, err := g.client.ImportTeam(ctx, sport, team)
	if err != nil {
		return nil, err
	}
	g.store.AppendPlayers(players)
	return players, nil
}

// UpdateSettings writes the settings record and replaces the cached copy.
func (g *Gateway) UpdateSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	if settings.MinPrice < 0 || settings.MaxPrice < 0 {
		return nil, &ValidationError{Msg: "prices must not be negative"}
	}
	if settings.MaxPrice < settings.MinPrice {
		return nil, &ValidationError{Msg: "max price must be at least min price"}
	}
	if settings.MinDealScore < 0 || settings.MinDealScore > 100 {
		return nil, &ValidationError{Msg: "min deal score must be between 0 and 100"}
	}

	if err := g.begin("update_settings"); err != nil {
		return nil, err
	}
	defer g.end("update_settings")

	stored, err := g.client.UpdateSettings(ctx, settings)
	if err != nil {
		return nil, err
	}
	g.store.SetSettings(*stored)
	return stored, nil
}

// SubmitReport files an incorrect-match report. Nothing is kept locally
// after a successful submission.
func (g *Gateway) SubmitReport(ctx context.Context, report models.ReportSubmission) error {
	if report.ListingID == "" {
		return &ValidationError{Msg: "listing id is required"}
	}
	if !models.ValidReportIssue(report.Issue) {
		return &ValidationError{Msg: "unknown issue type"}
	}

	if err := g.begin("submit_report"); err != nil {
		return err
	}
	defer g.end("submit_report")

	return g.client.SubmitReport(ctx, report)
}

// UploadPriceData uploads a market-price reference file and refreshes the
// cached price-data aggregate on success.
func (g *Gateway) UploadPriceData(ctx context.Context, sport models.Sport, filename string, file io.Reader) error {
	if !validSport(sport) {
		return &ValidationError{Msg: "unknown sport"}
	}

	if err := g.begin("upload_price_data"); err != nil {
		return err
	}
	defer g.end("upload_price_data")

	if err := g.client.UploadPriceData(ctx, sport, filename, file); err != nil {
		return err
	}

	if stats, err := g.client.GetPriceDataStats(ctx); err == nil {
		g.store.SetPriceStats(*stats)
	}
	return nil
}

// PriceDataStats fetches and caches the price-data aggregate.
func (g *Gateway) PriceDataStats(ctx context.Context) (*models.PriceDataStats, error) {
	stats, err := g.client.GetPriceDataStats(ctx)
	if err != nil {
		return nil, err
	}
	g.store.SetPriceStats(*stats)
	return stats, nil
}

// DeletePriceData removes all uploaded price data. The local aggregate is
// invalidated as soon as the action is issued.
func (g *Gateway) DeletePriceData(ctx context.Context) error {
	if err := g.begin("delete_price_data"); err != nil {
		return err
	}
	defer g.end("delete_price_data")

	g.store.ClearPriceStats()
	return g.client.DeletePriceData(ctx)
}

// ClearData deletes every stored listing. Local listings and stats are
// emptied immediately and a refresh is scheduled shortly after, regardless
// of whether the delete itself succeeds: stale numbers must not linger.
func (g *Gateway) ClearData(ctx context.Context) (int, error) {
	if err := g.begin("clear_data"); err != nil {
		return 0, err
	}
	defer g.end("clear_data")

	g.store.ClearDeals()
	time.AfterFunc(g.refreshDelay, g.scheduler.RequestRefresh)

	deleted, err := g.client.ClearData(ctx)
	if err != nil {
		log.Printf("Gateway: clear data failed: %v", err)
		return 0, err
	}
	return deleted, nil
}
