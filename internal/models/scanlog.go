package models

import (
	"encoding/json"
	"time"
)

// ScanOutcome classifies what the scanner did with a candidate listing.
type ScanOutcome string

const (
	ScanOutcomeSaved    ScanOutcome = "saved"
	ScanOutcomeMatched  ScanOutcome = "matched"
	ScanOutcomeRejected ScanOutcome = "rejected"
	ScanOutcomeOther    ScanOutcome = "other"
)

// ScanLogEntry is one row of the scanner's audit trail. Entries are
// append-only server-side; the engine only reads them.
type ScanLogEntry struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	ListingURL   string      `json:"listingUrl,omitempty"`
	Platform     string      `json:"platform"`
	Sport        Sport       `json:"sport"`
	Price        float64     `json:"price"`
	Outcome      ScanOutcome `json:"outcome"`
	RejectReason string      `json:"rejectReason,omitempty"`
	ScannedAt    time.Time   `json:"scannedAt"`
}

func (e *ScanLogEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "id"); ok {
		e.ID = asString(v)
	}
	if v, ok := pickField(raw, "title"); ok {
		e.Title = asString(v)
	}
	if v, ok := pickField(raw, "listingUrl", "listing_url"); ok {
		e.ListingURL = asString(v)
	}
	if v, ok := pickField(raw, "platform"); ok {
		e.Platform = asString(v)
	}
	if v, ok := pickField(raw, "sport"); ok {
		e.Sport = Sport(asString(v))
	}
	if v, ok := pickField(raw, "price"); ok {
		e.Price = asFloat(v)
	}
	if v, ok := pickField(raw, "outcome"); ok {
		e.Outcome = ScanOutcome(asString(v))
	}
	if v, ok := pickField(raw, "rejectReason", "reject_reason"); ok {
		e.RejectReason = asString(v)
	}
	if v, ok := pickField(raw, "scannedAt", "scanned_at", "createdAt", "created_at"); ok {
		if t := asTime(v); t != nil {
			e.ScannedAt = *t
		}
	}
	return nil
}

// ScanCount is the scanner's listings-evaluated counter. ResetAt is set when
// the server has restarted the counter; the scan-rate window must rewind to it.
type ScanCount struct {
	Count   int        `json:"count"`
	ResetAt *time.Time `json:"resetAt,omitempty"`
}

func (c *ScanCount) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "count", "scanCount", "scan_count"); ok {
		c.Count = asInt(v)
	}
	if v, ok := pickField(raw, "resetAt", "reset_at"); ok {
		c.ResetAt = asTime(v)
	}
	return nil
}
