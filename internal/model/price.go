package model

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriceItem is a price snapshot written by the market data poller.
// The extra field set is not fixed, callers must treat every key as optional.
type PriceItem struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Ticker        string                 `bson:"Code" json:"ticker"`
	UpdatedAt     time.Time              `bson:"_updated_at" json:"updatedAt"`
	ExtraElements map[string]interface{} `bson:",inline" json:"extraElements"`
}

// Well known extra element keys
const (
	FieldLast               = "Last"
	FieldDailyChange        = "DailyChange"
	FieldDailyChangePercent = "DailyChangePercent"
)

// Float returns a numeric extra element, false when missing or not numeric
func (p *PriceItem) Float(key string) (float64, bool) {
	v, ok := p.ExtraElements[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// MarketSummary counts rising, falling and flat tickers
type MarketSummary struct {
	Rising  int `json:"rising"`
	Falling int `json:"falling"`
	Neutral int `json:"neutral"`
	Total   int `json:"total"`
}
