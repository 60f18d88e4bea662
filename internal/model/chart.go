package model

import "time"

// ChartData is a single chart point with a granularity dependent date label
type ChartData struct {
	Date  string    `json:"date"`
	Price float64   `json:"price"`
	Time  time.Time `json:"-"`
}
