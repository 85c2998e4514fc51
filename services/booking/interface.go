package booking

import (
	"context"
	"time"

	"slotbook/models"
)

// CreateBookingRequest carries a customer's attempt to claim one slot.
type CreateBookingRequest struct {
	HostID           string
	StartTime        time.Time
	EndTime          time.Time
	Currency         string
	CustomerName     string
	CustomerEmail    string
	CustomerWhatsapp string
}

// OrderResponse is the outcome of a Razorpay booking attempt. Free slots
// skip payment entirely and come back already confirmed.
type OrderResponse struct {
	BookingID string  `json:"bookingId"`
	Free      bool    `json:"isFree"`
	OrderID   string  `json:"orderId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	KeyID     string  `json:"keyId,omitempty"`
}

// PayUOrderResponse is the outcome of a PayU booking attempt: the form
// action and signed parameters the checkout page must submit.
type PayUOrderResponse struct {
	BookingID string                 `json:"bookingId"`
	Free      bool                   `json:"isFree"`
	Action    string                 `json:"action,omitempty"`
	Params    models.PayUOrderParams `json:"params"`
}

// BookingService drives a booking from slot acquisition through its payment
// lifecycle.
type BookingService interface {
	CreateRazorpayOrder(ctx context.Context, req CreateBookingRequest) (*OrderResponse, error)
	CreatePayUOrder(ctx context.Context, req CreateBookingRequest) (*PayUOrderResponse, error)
	HandleRazorpayCallback(ctx context.Context, cb models.RazorpayCallback) (*models.Booking, error)
	HandlePayUCallback(ctx context.Context, cb models.PayUCallback) (*models.Booking, error)
}

// EnrichmentDispatcher fans out post-confirmation work (notification,
// calendar event) after the state transition has committed. Dispatch is
// fire-and-forget: failures are logged by the dispatcher and never surface
// as booking errors.
type EnrichmentDispatcher interface {
	DispatchConfirmed(ctx context.Context, bookingID string)
}
