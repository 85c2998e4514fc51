package models

import "time"

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

// Payment gateways.
const (
	GatewayRazorpay = "razorpay"
	GatewayPayU     = "payu"
)

// Customer holds the contact details captured at booking time.
type Customer struct {
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Whatsapp string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
}

// Booking represents a customer's claim on one interval of a host's calendar.
// Times are absolute UTC instants; the interval is half-open [start, end).
type Booking struct {
	ID        string    `bson:"id" json:"id"`
	HostID    string    `bson:"host_id" json:"hostId"`
	Customer  Customer  `bson:"customer" json:"customer"`
	StartTime time.Time `bson:"start_time" json:"startTime"`
	EndTime   time.Time `bson:"end_time" json:"endTime"`
	Status    string    `bson:"status" json:"status"`
	Amount    float64   `bson:"amount" json:"amount"`
	Currency  string    `bson:"currency" json:"currency"`
	Gateway   string    `bson:"gateway,omitempty" json:"gateway,omitempty"`
	OrderID   string    `bson:"order_id,omitempty" json:"orderId,omitempty"`   // Provider A order reference
	PaymentID string    `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	TxnID     string    `bson:"txn_id,omitempty" json:"txnId,omitempty"` // Provider B transaction reference

	// Enrichment fields, populated after confirmation by external collaborators.
	// Never part of the booking's correctness.
	MeetingLink string `bson:"meeting_link,omitempty" json:"meetingLink,omitempty"`
	Reference   string `bson:"reference,omitempty" json:"reference,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Terminal reports whether the booking has left the pending state for good.
func (b *Booking) Terminal() bool {
	return b.Status == StatusConfirmed || b.Status == StatusFailed || b.Status == StatusExpired
}

// ActivePending reports whether a pending booking still blocks its interval:
// a pending booking older than the lock TTL is treated as abandoned.
func (b *Booking) ActivePending(now time.Time, ttl time.Duration) bool {
	return b.Status == StatusPending && b.CreatedAt.After(now.Add(-ttl))
}

// IntervalsOverlap reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap, so
// back-to-back bookings are legal.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
