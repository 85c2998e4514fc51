package models

import "time"

// Slot is one candidate bookable interval derived from an availability rule.
type Slot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	IsFree   bool      `json:"isFree"`
	Price    float64   `json:"price"`
	PriceUSD float64   `json:"priceUsd"`
}
