package calendar

import (
	"context"
	"strings"

	"slotbook/models"
)

// CalendarEnricher creates the meeting artifacts for a confirmed booking.
// Like notification it is best-effort: a booking without a meeting link is
// still a valid confirmed booking.
type CalendarEnricher interface {
	// CreateMeeting returns a meeting link for the booking, or "" when the
	// backing calendar is not configured.
	CreateMeeting(ctx context.Context, booking *models.Booking, host *models.Host) (string, error)
}

// NoopEnricher is used when no calendar backend is configured.
type NoopEnricher struct{}

func (e *NoopEnricher) CreateMeeting(ctx context.Context, booking *models.Booking, host *models.Host) (string, error) {
	return "", nil
}

// BookingReference derives the short human-facing reference shown in
// confirmations: the last six characters of the booking ID, uppercased.
func BookingReference(bookingID string) string {
	if len(bookingID) <= 6 {
		return strings.ToUpper(bookingID)
	}
	return strings.ToUpper(bookingID[len(bookingID)-6:])
}
