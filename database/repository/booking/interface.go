package bookingRepo

import (
	"context"
	"errors"
	"time"

	"slotbook/models"
)

var (
	// ErrSlotTaken is returned by AcquireSlot when another active booking or
	// in-flight acquisition already claims an overlapping interval.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrBookingNotFound is returned when no booking matches the lookup.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNotPending is returned by state transitions when the booking has
	// already left the pending state.
	ErrNotPending = errors.New("booking is not pending")
)

// BookingRepository persists bookings and owns the atomic slot-acquisition
// primitive. The store is the single source of truth; nothing above this
// layer caches booking or lock state.
type BookingRepository interface {
	// AcquireSlot atomically claims booking's interval for its host and
	// inserts the booking. Exactly one of any set of concurrent overlapping
	// attempts succeeds; losers get ErrSlotTaken and leave no state behind.
	AcquireSlot(ctx context.Context, booking *models.Booking, ttl time.Duration) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByTxnID(ctx context.Context, txnID string) (*models.Booking, error)

	// FindActiveOverlapping returns a confirmed or live-pending booking for
	// the host intersecting the half-open interval [start, end), or nil.
	FindActiveOverlapping(ctx context.Context, hostID string, start, end time.Time, ttl time.Duration) (*models.Booking, error)

	// ConfirmFromPending transitions pending → confirmed, recording the
	// provider payment reference. ErrNotPending if the booking is terminal.
	ConfirmFromPending(ctx context.Context, id, paymentID string) (*models.Booking, error)
	// FailFromPending transitions pending → failed. ErrNotPending if terminal.
	FailFromPending(ctx context.Context, id string) (*models.Booking, error)
	// ExpireStale rewrites pending bookings older than ttl to expired and
	// reports how many were swept.
	ExpireStale(ctx context.Context, ttl time.Duration) (int64, error)

	// SetEnrichment records best-effort enrichment results on a confirmed
	// booking without touching its status.
	SetEnrichment(ctx context.Context, id, meetingLink, reference string) error

	// ReleaseSlot drops the interval claim for a booking that will never
	// confirm (failed verification, host/rule validation failure).
	ReleaseSlot(ctx context.Context, bookingID string) error

	EnsureIndexes() error
}
