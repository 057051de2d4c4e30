package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/cardsnipe/engine/internal/models"
)

func unmarshalData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("empty response data")
	}
	return json.Unmarshal(env.Data, out)
}

// GetPlayers fetches the monitored player list.
func (c *Client) GetPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := c.get(ctx, "/api/players", nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// AddPlayer creates a monitored player and returns the stored record.
func (c *Client) AddPlayer(ctx context.Context, name string, sport models.Sport) (*models.Player, error) {
	body := map[string]any{"name": name, "sport": sport}
	env, err := c.request(ctx, "POST", "/api/players", nil, body)
	if err != nil {
		return nil, err
	}
	var player models.Player
	if err := unmarshalData(env, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// TogglePlayer flips a player's active flag and returns the updated record.
func (c *Client) TogglePlayer(ctx context.Context, id string, active bool) (*models.Player, error) {
	body := map[string]any{"active": active}
	env, err := c.request(ctx, "PATCH", "/api/players/"+id, nil, body)
	if err != nil {
		return nil, err
	}
	var player models.Player
	if err := unmarshalData(env, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// DeletePlayer removes a player from monitoring.
func (c *Client) DeletePlayer(ctx context.Context, id string) error {
	_, err := c.request(ctx, "DELETE", "/api/players/"+id, nil, nil)
	return err
}

// GetTeams fetches the team catalog for a sport.
func (c *Client) GetTeams(ctx context.Context, sport models.Sport) ([]models.Team, error) {
	var teams []models.Team
	query := url.Values{}
	if sport != "" {
		query.Set("sport", string(sport))
	}
	if err := c.get(ctx, "/api/teams", query, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// ImportTeam asks the service to create players for a team's roster and
// returns the players it created.
func (c *Client) ImportTeam(ctx context.Context, sport models.Sport, team string) ([]models.Player, error) {
	body := map[string]any{"sport": sport, "team": team}
	env, err := c.request(ctx, "POST", "/api/teams/import", nil, body)
	if err != nil {
		return nil, err
	}
	var players []models.Player
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &players); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// SubmitReport files an incorrect-match report for a listing.
func (c *Client) SubmitReport(ctx context.Context, report models.ReportSubmission) error {
	_, err := c.request(ctx, "POST", "/api/report", nil, report)
	return err
}

// UploadPriceData uploads a market-price reference file for a sport.
func (c *Client) UploadPriceData(ctx context.Context, sport models.Sport, filename string, file io.Reader) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := writer.WriteField("sport", string(sport)); err != nil {
		return fmt.Errorf("write sport field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/price-data/upload", &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	_, err = c.do(req)
	return err
}

// GetPriceDataStats fetches counts of uploaded price-reference rows.
func (c *Client) GetPriceDataStats(ctx context.Context) (*models.PriceDataStats, error) {
	var stats models.PriceDataStats
	if err := c.get(ctx, "/api/price-data/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeletePriceData removes all uploaded price-reference data.
func (c *Client) DeletePriceData(ctx context.Context) error {
	_, err := c.request(ctx, "DELETE", "/api/price-data", nil, nil)
	return err
}

// ClearData deletes every stored listing and returns how many were removed.
func (c *Client) ClearData(ctx context.Context) (int, error) {
	env, err := c.request(ctx, "DELETE", "/api/clear-data", nil, nil)
	if err != nil {
		return 0, err
	}
	return env.Deleted, nil
}
