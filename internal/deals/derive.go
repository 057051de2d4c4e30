// Package deals holds the pure display-derivation logic for the dashboard:
// countdown formatting, urgency banding, scan-rate calculation, local stats
// aggregation, the offline sample-data generator, and the local filter/sort
// pipeline used when the remote service is unreachable.
package deals

import (
	"fmt"
	"math"
	"time"

	"github.com/cardsnipe/engine/internal/models"
)

// Urgency bands an auction's time remaining for display.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// ScoreBand groups deal scores for badge coloring.
type ScoreBand string

const (
	BandHigh   ScoreBand = "high"   // >= 40
	BandMedium ScoreBand = "medium" // >= 25
	BandLow    ScoreBand = "low"
)

const (
	criticalWindow   = 5 * time.Minute
	warningWindow    = 30 * time.Minute
	endingSoonWindow = time.Hour
)

// RemainingTime formats the time left until endTime as "{h}h {m}m",
// "{m}m {s}s" or "{s}s", truncating each unit. Returns "Ended" once endTime
// is not in the future.
func RemainingTime(endTime, now time.Time) string {
	diff := endTime.Sub(now)
	if diff <= 0 {
		return "Ended"
	}

	total := int(diff / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// UrgencyClass bands the time remaining: critical under 5 minutes, warning
// under 30. The critical boundary is exclusive, so exactly 5 minutes out is
// still a warning. A zero endTime means the listing has no countdown.
func UrgencyClass(endTime, now time.Time) Urgency {
	if endTime.IsZero() {
		return UrgencyNone
	}
	diff := endTime.Sub(now)
	if diff < criticalWindow {
		return UrgencyCritical
	}
	if diff < warningWindow {
		return UrgencyWarning
	}
	return UrgencyNone
}

// DealScoreBand groups a deal score for display.
func DealScoreBand(score int) ScoreBand {
	if score >= 40 {
		return BandHigh
	}
	if score >= 25 {
		return BandMedium
	}
	return BandLow
}

// ScanRate formats listings scanned per second to two decimals. Until the
// window is at least a second old there is nothing meaningful to report.
func ScanRate(scanCount int, windowStart, now time.Time) string {
	if windowStart.IsZero() {
		return "0.00"
	}
	elapsed := now.Sub(windowStart).Seconds()
	if elapsed < 1 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(scanCount)/elapsed)
}

// AggregateStats recomputes the stats banner from a listing set, using the
// same formulas the server applies in live mode. Used in fallback mode when
// no server-provided stats exist.
func AggregateStats(listings []models.Listing, now time.Time) models.DealStats {
	stats := models.DealStats{TotalDeals: len(listings)}

	scoreSum := 0
	for _, l := range listings {
		scoreSum += l.DealScore
		if l.DealScore >= 30 {
			stats.HotDeals++
		}
		if l.IsAuction && l.AuctionEndTime != nil && l.AuctionEndTime.Sub(now) < endingSoonWindow {
			stats.EndingSoon++
		}
		if l.MarketValue > 0 {
			stats.TotalPotentialProfit += l.MarketValue - l.CurrentPrice
		}
	}

	if len(listings) > 0 {
		stats.AvgDealScore = int(math.Round(float64(scoreSum) / float64(len(listings))))
	}
	return stats
}
