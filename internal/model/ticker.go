package model

// Ticker maps a ticker symbol to its company name
type Ticker struct {
	Symbol string `bson:"_id" json:"symbol"`
	Name   string `bson:"original_text" json:"name"`
}
