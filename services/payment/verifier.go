package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"slotbook/models"
)

// ErrSignatureMismatch is returned when a callback's supplied digest does not
// match the recomputed one. It is never silently treated as success.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// Verifier checks the authenticity of a payment callback against the
// booking it claims to settle. Both gateways sign an ordered, pipe-joined
// concatenation of transaction fields with a per-currency secret.
type Verifier interface {
	Verify(booking *models.Booking, callback any) error
}

// RazorpayVerifier verifies Provider A callbacks:
// HMAC-SHA256(secret, orderId + "|" + paymentId) compared byte-for-byte
// against the supplied signature.
type RazorpayVerifier struct {
	Secrets Secrets
}

func (v *RazorpayVerifier) Verify(booking *models.Booking, callback any) error {
	cb, ok := callback.(models.RazorpayCallback)
	if !ok {
		return fmt.Errorf("razorpay verifier: unexpected callback type %T", callback)
	}

	cred, err := v.Secrets.Lookup(ProviderRazorpay, booking.Currency)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, []byte(cred.Secret))
	mac.Write([]byte(cb.OrderID + "|" + cb.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// PayUVerifier verifies Provider B callbacks and signs outgoing payment
// requests. Field order and the run of empty placeholder fields are fixed by
// the gateway protocol and must be reproduced exactly.
type PayUVerifier struct {
	Secrets Secrets
}

// RequestHash computes the hash submitted with a payment form:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1|<9 empty>|salt).
func (v *PayUVerifier) RequestHash(p models.PayUOrderParams, currency string) (string, error) {
	cred, err := v.Secrets.Lookup(ProviderPayU, currency)
	if err != nil {
		return "", err
	}
	fields := []string{
		p.Key, p.TxnID, p.Amount, p.ProductInfo, p.Firstname, p.Email, p.UDF1,
		"", "", "", "", "", "", "", "", "",
		cred.Secret,
	}
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the response hash, which runs the request sequence in
// reverse: sha512(salt|status|<9 empty>|udf1|email|firstname|productinfo|amount|txnid|key).
// The salt is selected by the currency carried in udf1.
func (v *PayUVerifier) Verify(booking *models.Booking, callback any) error {
	cb, ok := callback.(models.PayUCallback)
	if !ok {
		return fmt.Errorf("payu verifier: unexpected callback type %T", callback)
	}

	currency := cb.UDF1
	if currency == "" {
		currency = booking.Currency
	}
	cred, err := v.Secrets.Lookup(ProviderPayU, currency)
	if err != nil {
		return err
	}

	fields := []string{
		cred.Secret, cb.Status,
		"", "", "", "", "", "", "", "", "",
		cb.UDF1, cb.Email, cb.Firstname, cb.ProductInfo, cb.Amount, cb.TxnID, cb.Key,
	}
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	expected := hex.EncodeToString(sum[:])

	if !hmac.Equal([]byte(expected), []byte(cb.Hash)) {
		return ErrSignatureMismatch
	}
	return nil
}
