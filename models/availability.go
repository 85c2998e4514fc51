package models

// AvailabilityRule is a time-window template defining a host's bookable
// hours, slot sizing and price. Rules are created and edited by the host
// out-of-band and are read-only to the booking core.
//
// A rule is either recurring (DayOfWeek 0=Sunday..6=Saturday) or a one-off
// override for a single date (SpecificDate set, "2006-01-02"). A
// specific-date rule always takes precedence over a recurring rule covering
// the same instant.
type AvailabilityRule struct {
	ID            string  `bson:"id" json:"id"`
	HostID        string  `bson:"host_id" json:"hostId"`
	DayOfWeek     int     `bson:"day_of_week" json:"dayOfWeek"`
	SpecificDate  string  `bson:"specific_date,omitempty" json:"specificDate,omitempty"`
	StartTime     string  `bson:"start_time" json:"startTime"` // "HH:MM" host-local clock time
	EndTime       string  `bson:"end_time" json:"endTime"`     // "HH:MM", exclusive
	SlotDuration  int     `bson:"slot_duration" json:"slotDuration"` // minutes
	BufferMinutes int     `bson:"buffer_minutes" json:"bufferMinutes"`
	IsFree        bool    `bson:"is_free" json:"isFree"`
	Price         float64 `bson:"price" json:"price"`
	PriceUSD      float64 `bson:"price_usd" json:"priceUsd"`
}

// Recurring reports whether the rule applies weekly rather than to one date.
func (r *AvailabilityRule) Recurring() bool {
	return r.SpecificDate == ""
}
