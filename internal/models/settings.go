package models

import "encoding/json"

// Settings is the scanner's single mutable configuration record. The remote
// service owns it; the engine holds a cached copy, last write wins.
type Settings struct {
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	MinDealScore int     `json:"minDealScore"`
	CardYear     string  `json:"cardYear,omitempty"` // a year, or "all"
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "minPrice", "min_price"); ok {
		s.MinPrice = asFloat(v)
	}
	if v, ok := pickField(raw, "maxPrice", "max_price"); ok {
		s.MaxPrice = asFloat(v)
	}
	if v, ok := pickField(raw, "minDealScore", "min_deal_score"); ok {
		s.MinDealScore = asInt(v)
	}
	if v, ok := pickField(raw, "cardYear", "card_year"); ok {
		s.CardYear = asString(v)
	}
	return nil
}

// DealFilters is the listing query the dashboard currently has active. In
// live mode it is forwarded to the remote service; in fallback mode it is
// applied locally.
type DealFilters struct {
	Sport        string `json:"sport"`
	Type         string `json:"type"` // all, auction, buyNow
	MinDealScore int    `json:"minDealScore"`
	Search       string `json:"search"`
	Grade        string `json:"grade"` // all, graded, raw
	SortBy       string `json:"sortBy"`
}

// DefaultDealFilters matches the dashboard's initial state.
func DefaultDealFilters() DealFilters {
	return DealFilters{
		Sport:  "all",
		Type:   "all",
		Grade:  "all",
		SortBy: "dealScore",
	}
}
