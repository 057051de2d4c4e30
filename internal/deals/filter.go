package deals

import (
	"sort"
	"strings"

	"github.com/cardsnipe/engine/internal/models"
)

// FilterListings applies the dashboard's active filters to a listing set.
// Only used in fallback mode; in live mode the server has already filtered.
// Unset or "all" values are always satisfied, active predicates are ANDed.
func FilterListings(listings []models.Listing, f models.DealFilters) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	search := strings.ToLower(f.Search)

	for _, l := range listings {
		if f.Sport != "" && f.Sport != "all" && string(l.Sport) != f.Sport {
			continue
		}
		if f.Type == "auction" && !l.IsAuction {
			continue
		}
		if f.Type == "buyNow" && l.IsAuction {
			continue
		}
		if f.Grade == "raw" && !strings.EqualFold(l.Grade, "Raw") {
			continue
		}
		if f.Grade == "graded" && strings.EqualFold(l.Grade, "Raw") {
			continue
		}
		if l.DealScore < f.MinDealScore {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.Title), search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ScanLogField selects the primary sort key for scan-log entries.
type ScanLogField string

const (
	ScanLogByTitle        ScanLogField = "title"
	ScanLogByPrice        ScanLogField = "price"
	ScanLogByOutcome      ScanLogField = "outcome"
	ScanLogByRejectReason ScanLogField = "rejectReason"
	ScanLogByScannedAt    ScanLogField = "scannedAt"
)

// SortScanLog orders entries in place by the given field and direction.
// The sort is stable, so equal keys keep their original fetch order, and
// price and timestamp compare numerically rather than lexically.
func SortScanLog(entries []models.ScanLogEntry, field ScanLogField, descending bool) {
	less := func(a, b models.ScanLogEntry) bool {
		switch field {
		case ScanLogByPrice:
			return a.Price < b.Price
		case ScanLogByOutcome:
			return a.Outcome < b.Outcome
		case ScanLogByRejectReason:
			return a.RejectReason < b.RejectReason
		case ScanLogByScannedAt:
			return a.ScannedAt.Before(b.ScannedAt)
		default:
			return a.Title < b.Title
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if descending {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}
