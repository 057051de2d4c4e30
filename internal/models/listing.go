package models

import (
	"encoding/json"
	"math"
	"time"
)

type Sport string

const (
	SportBasketball Sport = "basketball"
	SportBaseball   Sport = "baseball"
)

// Listing is one marketplace offer for a graded or raw trading card.
type Listing struct {
	ID             string     `json:"id"`
	Sport          Sport      `json:"sport"`
	Title          string     `json:"title"`
	Player         string     `json:"player,omitempty"`
	Year           string     `json:"year,omitempty"`
	CardSet        string     `json:"set,omitempty"`
	Grade          string     `json:"grade"`
	IsAuction      bool       `json:"isAuction"`
	CurrentPrice   float64    `json:"currentPrice"`
	MarketValue    float64    `json:"marketValue,omitempty"` // 0 means unknown
	MarketValueURL string     `json:"marketValueUrl,omitempty"`
	DealScore      int        `json:"dealScore"`
	AuctionEndTime *time.Time `json:"auctionEndTime,omitempty"`
	BidCount       int        `json:"bidCount"`
	Platform       string     `json:"platform"`
	SellerRating   float64    `json:"sellerRating,omitempty"`
	ListingURL     string     `json:"listingUrl,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
}

// UnmarshalJSON resolves the camelCase/snake_case field aliasing described in
// normalize.go and coerces numeric strings. When the payload omits dealScore
// but carries a known market value, the score is derived from the price pair.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := pickField(raw, "id", "ebayItemId", "ebay_item_id"); ok {
		l.ID = asString(v)
	}
	if v, ok := pickField(raw, "sport"); ok {
		l.Sport = Sport(asString(v))
	}
	if v, ok := pickField(raw, "title"); ok {
		l.Title = asString(v)
	}
	if v, ok := pickField(raw, "player"); ok {
		l.Player = asString(v)
	}
	if v, ok := pickField(raw, "year"); ok {
		l.Year = asString(v)
	}
	if v, ok := pickField(raw, "set", "cardSet", "card_set"); ok {
		l.CardSet = asString(v)
	}
	if v, ok := pickField(raw, "grade"); ok {
		l.Grade = asString(v)
	}
	if v, ok := pickField(raw, "isAuction", "is_auction"); ok {
		l.IsAuction = asBool(v)
	}
	if v, ok := pickField(raw, "currentPrice", "current_price"); ok {
		l.CurrentPrice = asFloat(v)
	}
	if v, ok := pickField(raw, "marketValue", "market_value"); ok {
		l.MarketValue = asFloat(v)
	}
	if v, ok := pickField(raw, "marketValueUrl", "market_value_url"); ok {
		l.MarketValueURL = asString(v)
	}
	if v, ok := pickField(raw, "auctionEndTime", "auction_end_time", "endTime", "end_time"); ok {
		l.AuctionEndTime = asTime(v)
	}
	if v, ok := pickField(raw, "bidCount", "bid_count"); ok {
		l.BidCount = asInt(v)
	}
	if v, ok := pickField(raw, "platform"); ok {
		l.Platform = asString(v)
	}
	if v, ok := pickField(raw, "sellerRating", "seller_rating"); ok {
		l.SellerRating = asFloat(v)
	}
	if v, ok := pickField(raw, "listingUrl", "listing_url"); ok {
		l.ListingURL = asString(v)
	}
	if v, ok := pickField(raw, "imageUrl", "image_url"); ok {
		l.ImageURL = asString(v)
	}

	if v, ok := pickField(raw, "dealScore", "deal_score"); ok {
		l.DealScore = asInt(v)
	} else if l.MarketValue > 0 {
		l.DealScore = ComputeDealScore(l.CurrentPrice, l.MarketValue)
	}

	return nil
}

// ComputeDealScore returns the percentage discount of current price versus
// market value, rounded and clamped to [0,100]. marketValue must be > 0.
func ComputeDealScore(currentPrice, marketValue float64) int {
	score := int(math.Round((1 - currentPrice/marketValue) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
