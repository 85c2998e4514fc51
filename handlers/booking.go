package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "slotbook/database/repository/booking"
	hostRepo "slotbook/database/repository/host"
	"slotbook/models"
	"slotbook/services/availability"
	"slotbook/services/booking"
	"slotbook/services/payment"
	"slotbook/utils"
)

// BookingHandler exposes the availability and booking endpoints.
type BookingHandler struct {
	Booking      booking.BookingService
	Availability availability.AvailabilityService
	Logger       *zap.Logger
}

func NewBookingHandler(bookingSvc booking.BookingService, availabilitySvc availability.AvailabilityService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Booking:      bookingSvc,
		Availability: availabilitySvc,
		Logger:       logger,
	}
}

type createOrderRequest struct {
	HostID    string    `json:"hostId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	Currency  string    `json:"currency"`
	Customer  struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Whatsapp string `json:"whatsapp"`
	} `json:"customer" binding:"required"`
}

func (r createOrderRequest) toServiceRequest() booking.CreateBookingRequest {
	return booking.CreateBookingRequest{
		HostID:           r.HostID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Currency:         r.Currency,
		CustomerName:     r.Customer.Name,
		CustomerEmail:    r.Customer.Email,
		CustomerWhatsapp: r.Customer.Whatsapp,
	}
}

// GetDaySlots returns the bookable slots for a host on a calendar date.
// GET /api/bookings/slots?hostId=...&date=2026-01-15
func (h *BookingHandler) GetDaySlots(c *gin.Context) {
	hostID := c.Query("hostId")
	dateStr := c.Query("date")
	if hostID == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hostId and date are required"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slots, err := h.Availability.DaySlots(c.Request.Context(), hostID, date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hostId": hostID, "date": dateStr, "slots": slots})
}

// CreateOrder claims a slot and opens a Razorpay order for it.
// POST /api/bookings/orders
func (h *BookingHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Booking.CreateRazorpayOrder(c.Request.Context(), req.toServiceRequest())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreatePayUOrder claims a slot and returns the signed PayU form params.
// POST /api/bookings/payu-orders
func (h *BookingHandler) CreatePayUOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Booking.CreatePayUOrder(c.Request.Context(), req.toServiceRequest())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VerifyPayment settles a booking from the standard Razorpay checkout
// callback. POST /api/bookings/verify-payment
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	var cb struct {
		OrderID   string `json:"razorpay_order_id" binding:"required"`
		PaymentID string `json:"razorpay_payment_id" binding:"required"`
		Signature string `json:"razorpay_signature" binding:"required"`
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	h.settleRazorpay(c, cb.OrderID, cb.PaymentID, cb.Signature, cb.BookingID)
}

// VerifyPaymentRedirect settles a booking from the redirect flow, where
// Razorpay posts the callback fields as a form and the booking id rides in
// the redirect URL's query.
// POST /api/bookings/verify-payment-redirect?booking_id=...
func (h *BookingHandler) VerifyPaymentRedirect(c *gin.Context) {
	var cb models.RazorpayCallback
	if err := c.ShouldBind(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if cb.BookingID == "" {
		cb.BookingID = c.Query("booking_id")
	}
	if cb.BookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id is required"})
		return
	}

	h.settleRazorpay(c, cb.OrderID, cb.PaymentID, cb.Signature, cb.BookingID)
}

func (h *BookingHandler) settleRazorpay(c *gin.Context, orderID, paymentID, signature, bookingID string) {
	cb := models.RazorpayCallback{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
		BookingID: bookingID,
	}
	b, err := h.Booking.HandleRazorpayCallback(c.Request.Context(), cb)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      b.Status,
		"bookingId":   b.ID,
		"meetingLink": b.MeetingLink,
		"reference":   b.Reference,
	})
}

// PayUResponse settles a booking from the form-encoded response PayU posts
// back after checkout. POST /api/bookings/payu-response
func (h *BookingHandler) PayUResponse(c *gin.Context) {
	var cb models.PayUCallback
	if err := c.ShouldBind(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Booking.HandlePayUCallback(c.Request.Context(), cb)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      b.Status,
		"bookingId":   b.ID,
		"meetingLink": b.MeetingLink,
		"reference":   b.Reference,
	})
}

// Health reports the latest store and queue health snapshot. GET /health
func (h *BookingHandler) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// writeError maps service errors onto HTTP statuses.
func (h *BookingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, availability.ErrRuleNotFound),
		errors.Is(err, hostRepo.ErrHostNotFound),
		errors.Is(err, bookingRepo.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrSignatureMismatch),
		errors.Is(err, booking.ErrPaymentFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrStoreUnavailable):
		h.Logger.Error("booking store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
	default:
		h.Logger.Warn("booking request rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
