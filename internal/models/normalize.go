package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The scanner backend and older scraper revisions disagree on field naming:
// some payloads use camelCase, some snake_case, and a few fields changed name
// entirely between revisions (auctionEndTime vs endTime). All aliasing is
// resolved here, at the model boundary. The first alias that is present and
// non-null wins, so callers list the camelCase spelling first.

func pickField(raw map[string]json.RawMessage, names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		if v, ok := raw[name]; ok && len(v) > 0 && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// asString accepts a JSON string or number and returns its text form.
func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// asFloat accepts a JSON number or a numeric string.
func asFloat(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// asInt accepts a JSON number (truncating any fraction) or a numeric string.
func asInt(raw json.RawMessage) int {
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		return i
	}
	return int(asFloat(raw))
}

func asBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	// Some scraper revisions encode flags as 0/1.
	return asInt(raw) != 0
}

// asTime accepts an RFC3339 string or a unix-milliseconds number.
func asTime(raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t
		}
		if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return &t
		}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}
