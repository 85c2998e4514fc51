package models

// Host is the provider whose calendar is being booked. Identity management
// lives elsewhere; the booking core only reads the fields it needs for
// resolution, pricing and enrichment.
type Host struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Timezone string `bson:"timezone" json:"timezone"` // IANA name, e.g. "Asia/Kolkata"
	Currency string `bson:"currency" json:"currency"`
}
