package booking

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"slotbook/models"
	"slotbook/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func razorpaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func payuResponseHash(salt string, cb models.PayUCallback) string {
	fields := []string{
		salt, cb.Status,
		"", "", "", "", "", "", "", "", "",
		cb.UDF1, cb.Email, cb.Firstname, cb.ProductInfo, cb.Amount, cb.TxnID, cb.Key,
	}
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// createPending places a paid Razorpay booking and returns it.
func createPending(t *testing.T, svc *DefaultBookingService) *OrderResponse {
	t.Helper()
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)
	resp, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	return resp
}

func TestRazorpayCallbackConfirms(t *testing.T) {
	svc, repo, dispatcher := newTestService(paidRule())
	order := createPending(t, svc)

	cb := models.RazorpayCallback{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: razorpaySignature("inr-secret", order.OrderID, "pay_123"),
		BookingID: order.BookingID,
	}
	b, err := svc.HandleRazorpayCallback(context.Background(), cb)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, "pay_123", b.PaymentID)
	assert.Equal(t, 1, dispatcher.count())

	stored, err := repo.GetByID(context.Background(), order.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestRazorpayCallbackDuplicateIsIdempotent(t *testing.T) {
	svc, _, dispatcher := newTestService(paidRule())
	order := createPending(t, svc)

	cb := models.RazorpayCallback{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: razorpaySignature("inr-secret", order.OrderID, "pay_123"),
		BookingID: order.BookingID,
	}
	_, err := svc.HandleRazorpayCallback(context.Background(), cb)
	require.NoError(t, err)

	// Replays succeed without a second state change or enrichment dispatch.
	for i := 0; i < 3; i++ {
		b, err := svc.HandleRazorpayCallback(context.Background(), cb)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, b.Status)
	}
	assert.Equal(t, 1, dispatcher.count())
}

func TestRazorpayCallbackSignatureMismatch(t *testing.T) {
	svc, repo, dispatcher := newTestService(paidRule())
	order := createPending(t, svc)

	cb := models.RazorpayCallback{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: razorpaySignature("wrong-secret", order.OrderID, "pay_123"),
		BookingID: order.BookingID,
	}
	_, err := svc.HandleRazorpayCallback(context.Background(), cb)
	assert.ErrorIs(t, err, payment.ErrSignatureMismatch)

	stored, err := repo.GetByID(context.Background(), order.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Zero(t, dispatcher.count())

	// The slot reopens immediately once the claim is released.
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)
	_, err = svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	assert.NoError(t, err)
}

func TestRazorpayCallbackOnFailedBooking(t *testing.T) {
	svc, _, _ := newTestService(paidRule())
	order := createPending(t, svc)

	bad := models.RazorpayCallback{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: "deadbeef",
		BookingID: order.BookingID,
	}
	_, err := svc.HandleRazorpayCallback(context.Background(), bad)
	require.ErrorIs(t, err, payment.ErrSignatureMismatch)

	// A later valid-looking callback cannot resurrect a failed booking.
	good := models.RazorpayCallback{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: razorpaySignature("inr-secret", order.OrderID, "pay_123"),
		BookingID: order.BookingID,
	}
	_, err = svc.HandleRazorpayCallback(context.Background(), good)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestRazorpayCallbackUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService(paidRule())

	cb := models.RazorpayCallback{
		OrderID:   "order_x",
		PaymentID: "pay_x",
		Signature: "sig",
		BookingID: "missing",
	}
	_, err := svc.HandleRazorpayCallback(context.Background(), cb)
	assert.Error(t, err)
}

func createPayUPending(t *testing.T, svc *DefaultBookingService) *PayUOrderResponse {
	t.Helper()
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)
	resp, err := svc.CreatePayUOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	return resp
}

func payuSuccessCallback(order *PayUOrderResponse) models.PayUCallback {
	cb := models.PayUCallback{
		TxnID:       order.Params.TxnID,
		Status:      "success",
		Amount:      order.Params.Amount,
		ProductInfo: order.Params.ProductInfo,
		Firstname:   order.Params.Firstname,
		Email:       order.Params.Email,
		Key:         order.Params.Key,
		UDF1:        order.Params.UDF1,
	}
	cb.Hash = payuResponseHash("payu-salt-inr", cb)
	return cb
}

func TestPayUCallbackConfirms(t *testing.T) {
	svc, repo, dispatcher := newTestService(paidRule())
	order := createPayUPending(t, svc)

	b, err := svc.HandlePayUCallback(context.Background(), payuSuccessCallback(order))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, 1, dispatcher.count())

	stored, err := repo.GetByTxnID(context.Background(), order.Params.TxnID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestPayUCallbackFailureStatus(t *testing.T) {
	svc, repo, dispatcher := newTestService(paidRule())
	order := createPayUPending(t, svc)

	cb := payuSuccessCallback(order)
	cb.Status = "failure"
	cb.Hash = payuResponseHash("payu-salt-inr", cb)

	_, err := svc.HandlePayUCallback(context.Background(), cb)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Zero(t, dispatcher.count())

	stored, err := repo.GetByTxnID(context.Background(), order.Params.TxnID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestPayUCallbackTamperedHash(t *testing.T) {
	svc, repo, _ := newTestService(paidRule())
	order := createPayUPending(t, svc)

	cb := payuSuccessCallback(order)
	cb.Amount = "1.00" // hash no longer matches

	_, err := svc.HandlePayUCallback(context.Background(), cb)
	assert.ErrorIs(t, err, payment.ErrSignatureMismatch)

	stored, err := repo.GetByTxnID(context.Background(), order.Params.TxnID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestPayUCallbackDuplicateIsIdempotent(t *testing.T) {
	svc, _, dispatcher := newTestService(paidRule())
	order := createPayUPending(t, svc)

	cb := payuSuccessCallback(order)
	_, err := svc.HandlePayUCallback(context.Background(), cb)
	require.NoError(t, err)

	b, err := svc.HandlePayUCallback(context.Background(), cb)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, 1, dispatcher.count())
}
