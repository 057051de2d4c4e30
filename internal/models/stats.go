package models

import "encoding/json"

// DealStats is the aggregate banner above the listings grid. The server
// computes it in live mode; in fallback mode the engine recomputes it from
// the synthesized listing set with the same formulas.
type DealStats struct {
	TotalDeals           int     `json:"totalDeals"`
	HotDeals             int     `json:"hotDeals"`
	EndingSoon           int     `json:"endingSoon"`
	TotalPotentialProfit float64 `json:"totalPotentialProfit"`
	AvgDealScore         int     `json:"avgDealScore"`
}

func (s *DealStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "totalDeals", "total_deals"); ok {
		s.TotalDeals = asInt(v)
	}
	if v, ok := pickField(raw, "hotDeals", "hot_deals"); ok {
		s.HotDeals = asInt(v)
	}
	if v, ok := pickField(raw, "endingSoon", "ending_soon"); ok {
		s.EndingSoon = asInt(v)
	}
	if v, ok := pickField(raw, "totalPotentialProfit", "total_potential_profit"); ok {
		s.TotalPotentialProfit = asFloat(v)
	}
	if v, ok := pickField(raw, "avgDealScore", "avg_deal_score"); ok {
		s.AvgDealScore = asInt(v)
	}
	return nil
}

// PriceDataStats summarizes the uploaded market-price reference data.
type PriceDataStats struct {
	Total   int            `json:"total"`
	BySport map[string]int `json:"bySport"`
}

func (s *PriceDataStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := pickField(raw, "total", "totalCount", "total_count"); ok {
		s.Total = asInt(v)
	}
	if v, ok := pickField(raw, "bySport", "by_sport"); ok {
		var counts map[string]json.RawMessage
		if err := json.Unmarshal(v, &counts); err == nil {
			s.BySport = make(map[string]int, len(counts))
			for sport, n := range counts {
				s.BySport[sport] = asInt(n)
			}
		}
	}
	return nil
}
