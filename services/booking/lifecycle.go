package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/services/payment"
	"slotbook/utils"

	"go.uber.org/zap"
)

// HandleRazorpayCallback settles a booking from a gateway confirmation
// callback. Replays against an already-confirmed booking succeed without
// side effects; any other terminal state is rejected.
func (s *DefaultBookingService) HandleRazorpayCallback(ctx context.Context, cb models.RazorpayCallback) (*models.Booking, error) {
	logger := utils.GetLogger()

	b, err := s.Bookings.GetByID(ctx, cb.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.StatusConfirmed {
		logger.Info("duplicate confirmation callback",
			zap.String("bookingID", b.ID),
			zap.String("paymentID", cb.PaymentID))
		return b, nil
	}
	if b.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	if err := s.Verifiers[models.GatewayRazorpay].Verify(b, cb); err != nil {
		if errors.Is(err, payment.ErrSignatureMismatch) {
			s.reject(ctx, b, "signature mismatch")
		}
		return nil, err
	}

	updated, err := s.Bookings.ConfirmFromPending(ctx, b.ID, cb.PaymentID)
	if err != nil {
		return s.settleRace(ctx, b.ID, err)
	}

	logger.Info("booking confirmed",
		zap.String("bookingID", updated.ID),
		zap.String("paymentID", cb.PaymentID))
	s.dispatch(updated.ID)
	return updated, nil
}

// HandlePayUCallback settles a booking from a gateway response post. The
// response hash is checked before the reported status is trusted.
func (s *DefaultBookingService) HandlePayUCallback(ctx context.Context, cb models.PayUCallback) (*models.Booking, error) {
	logger := utils.GetLogger()

	b, err := s.Bookings.GetByTxnID(ctx, cb.TxnID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.StatusConfirmed {
		logger.Info("duplicate confirmation callback",
			zap.String("bookingID", b.ID),
			zap.String("txnID", cb.TxnID))
		return b, nil
	}
	if b.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	if err := s.Verifiers[models.GatewayPayU].Verify(b, cb); err != nil {
		if errors.Is(err, payment.ErrSignatureMismatch) {
			s.reject(ctx, b, "signature mismatch")
		}
		return nil, err
	}

	if !strings.EqualFold(cb.Status, "success") {
		s.reject(ctx, b, "gateway reported "+cb.Status)
		return nil, ErrPaymentFailed
	}

	updated, err := s.Bookings.ConfirmFromPending(ctx, b.ID, "")
	if err != nil {
		return s.settleRace(ctx, b.ID, err)
	}

	logger.Info("booking confirmed",
		zap.String("bookingID", updated.ID),
		zap.String("txnID", cb.TxnID))
	s.dispatch(updated.ID)
	return updated, nil
}

// settleRace resolves a lost compare-and-set: another settlement beat this
// one to the transition. A concurrent confirm is still an idempotent
// success; anything else is terminal.
func (s *DefaultBookingService) settleRace(ctx context.Context, id string, cause error) (*models.Booking, error) {
	if !errors.Is(cause, bookingRepo.ErrNotPending) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)
	}
	current, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusConfirmed {
		return current, nil
	}
	return nil, ErrAlreadyTerminal
}

// reject marks the booking failed and releases its interval claim so the
// slot reopens immediately instead of waiting out the lock TTL.
func (s *DefaultBookingService) reject(ctx context.Context, b *models.Booking, reason string) {
	logger := utils.GetLogger()
	logger.Warn("booking rejected",
		zap.String("bookingID", b.ID),
		zap.String("reason", reason))

	if _, err := s.Bookings.FailFromPending(ctx, b.ID); err != nil && !errors.Is(err, bookingRepo.ErrNotPending) {
		logger.Error("failed to mark booking failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	if err := s.Bookings.ReleaseSlot(ctx, b.ID); err != nil {
		logger.Error("failed to release slot locks", zap.String("bookingID", b.ID), zap.Error(err))
	}
}
