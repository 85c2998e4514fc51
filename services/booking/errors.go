package booking

import "errors"

// Booking error taxonomy. Rule resolution failures surface as
// availability.ErrRuleNotFound and authenticity failures as
// payment.ErrSignatureMismatch; everything else lives here.
var (
	// ErrSlotUnavailable means an overlap was detected or the lock was
	// denied; the caller may retry with a different interval.
	ErrSlotUnavailable = errors.New("slot already booked or currently being booked")

	// ErrAlreadyTerminal means a transition was attempted on a booking that
	// already left the pending state. Duplicate confirm callbacks are the
	// one case answered as a success no-op instead.
	ErrAlreadyTerminal = errors.New("booking already settled")

	// ErrPaymentFailed means the provider reported an unsuccessful payment.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrStoreUnavailable wraps backing-store I/O failures. The atomic
	// acquisition either fully applied or not at all.
	ErrStoreUnavailable = errors.New("booking store unavailable")
)
