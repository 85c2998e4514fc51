package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/services/availability"
	"slotbook/services/payment"
	"slotbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the production implementation. All writes go
// through the repository's atomic primitives; the service holds no state of
// its own.
type DefaultBookingService struct {
	Bookings     bookingRepo.BookingRepository
	Availability availability.AvailabilityService
	Orders       OrderClient
	Secrets      payment.Secrets
	Verifiers    map[string]payment.Verifier
	PayU         *payment.PayUVerifier
	Dispatcher   EnrichmentDispatcher
	LockTTL      time.Duration

	BaseURL        string
	PayUPaymentURL string
}

// prepare validates the request, resolves the governing availability rule
// and builds the booking document. Rule resolution happens before any write
// so a pricing or validation failure leaves no state behind. A rule that is
// marked free or prices the slot at zero yields a zero-amount booking, which
// the create flows confirm without a payment leg.
func (s *DefaultBookingService) prepare(ctx context.Context, req CreateBookingRequest, gateway string) (*models.Booking, error) {
	if req.HostID == "" {
		return nil, fmt.Errorf("hostId is required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("booking interval must end after it starts")
	}
	if req.CustomerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	rule, err := s.Availability.Resolve(ctx, req.HostID, req.StartTime)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}

	var amount float64
	if !rule.IsFree {
		amount = rule.Price
		if currency == "USD" {
			amount = rule.PriceUSD
		}
		if amount < 0 {
			return nil, fmt.Errorf("negative %s price on rule %s", currency, rule.ID)
		}
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:     uuid.New().String(),
		HostID: req.HostID,
		Customer: models.Customer{
			Name:     req.CustomerName,
			Email:    req.CustomerEmail,
			Whatsapp: req.CustomerWhatsapp,
		},
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Status:    models.StatusPending,
		Amount:    amount,
		Currency:  currency,
		Gateway:   gateway,
		CreatedAt: now,
	}
	return b, nil
}

// acquire claims the booking's interval, translating repository errors into
// the service taxonomy.
func (s *DefaultBookingService) acquire(ctx context.Context, b *models.Booking) error {
	err := s.Bookings.AcquireSlot(ctx, b, s.LockTTL)
	if err == nil {
		return nil
	}
	if errors.Is(err, bookingRepo.ErrSlotTaken) {
		return ErrSlotUnavailable
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// CreateRazorpayOrder claims the slot and opens a gateway order for it.
// Free slots skip the gateway and are confirmed in the same atomic write
// that claims the interval.
func (s *DefaultBookingService) CreateRazorpayOrder(ctx context.Context, req CreateBookingRequest) (*OrderResponse, error) {
	logger := utils.GetLogger()

	b, err := s.prepare(ctx, req, models.GatewayRazorpay)
	if err != nil {
		return nil, err
	}

	if b.Amount == 0 {
		b.Status = models.StatusConfirmed
		if err := s.acquire(ctx, b); err != nil {
			return nil, err
		}
		logger.Info("free booking confirmed",
			zap.String("bookingID", b.ID),
			zap.String("hostID", b.HostID))
		s.dispatch(b.ID)
		return &OrderResponse{BookingID: b.ID, Free: true, Currency: b.Currency}, nil
	}

	cred, err := s.Secrets.Lookup(payment.ProviderRazorpay, b.Currency)
	if err != nil {
		return nil, err
	}

	orderID, err := s.Orders.CreateOrder(ctx, subunits(b.Amount), b.Currency, b.ID)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	b.OrderID = orderID

	if err := s.acquire(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("booking pending payment",
		zap.String("bookingID", b.ID),
		zap.String("orderID", orderID),
		zap.Float64("amount", b.Amount),
		zap.String("currency", b.Currency))

	return &OrderResponse{
		BookingID: b.ID,
		OrderID:   orderID,
		Amount:    b.Amount,
		Currency:  b.Currency,
		KeyID:     cred.Key,
	}, nil
}

// CreatePayUOrder claims the slot and returns the signed form parameters
// the checkout page submits to the gateway. The booking's currency rides in
// udf1 so the response hash can be checked against the matching salt.
func (s *DefaultBookingService) CreatePayUOrder(ctx context.Context, req CreateBookingRequest) (*PayUOrderResponse, error) {
	logger := utils.GetLogger()

	b, err := s.prepare(ctx, req, models.GatewayPayU)
	if err != nil {
		return nil, err
	}

	if b.Amount == 0 {
		b.Status = models.StatusConfirmed
		if err := s.acquire(ctx, b); err != nil {
			return nil, err
		}
		logger.Info("free booking confirmed",
			zap.String("bookingID", b.ID),
			zap.String("hostID", b.HostID))
		s.dispatch(b.ID)
		return &PayUOrderResponse{BookingID: b.ID, Free: true}, nil
	}

	cred, err := s.Secrets.Lookup(payment.ProviderPayU, b.Currency)
	if err != nil {
		return nil, err
	}

	b.TxnID = "txn_" + uuid.New().String()
	params := models.PayUOrderParams{
		Key:         cred.Key,
		TxnID:       b.TxnID,
		Amount:      fmt.Sprintf("%.2f", b.Amount),
		ProductInfo: "Session Booking",
		Firstname:   firstName(req.CustomerName),
		Email:       req.CustomerEmail,
		Phone:       phoneOrDefault(req.CustomerWhatsapp),
		SuccessURL:  s.BaseURL + "/api/bookings/payu-response",
		FailureURL:  s.BaseURL + "/api/bookings/payu-response",
		UDF1:        b.Currency,
		Currency:    b.Currency,
	}
	hash, err := s.PayU.RequestHash(params, b.Currency)
	if err != nil {
		return nil, err
	}
	params.Hash = hash

	if err := s.acquire(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("booking pending payment",
		zap.String("bookingID", b.ID),
		zap.String("txnID", b.TxnID),
		zap.Float64("amount", b.Amount),
		zap.String("currency", b.Currency))

	return &PayUOrderResponse{
		BookingID: b.ID,
		Action:    s.PayUPaymentURL,
		Params:    params,
	}, nil
}

// dispatch hands a confirmed booking to the enrichment pipeline. Uses a
// detached context so a cancelled request cannot drop the enqueue.
func (s *DefaultBookingService) dispatch(bookingID string) {
	if s.Dispatcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Dispatcher.DispatchConfirmed(ctx, bookingID)
}

func subunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Guest"
	}
	return fields[0]
}

func phoneOrDefault(phone string) string {
	if phone == "" {
		return "9999999999"
	}
	return phone
}
