package models

// RazorpayCallback is the callback shape posted after a Razorpay checkout.
// BookingID arrives in the body on the standard flow and as a query parameter
// on the mobile redirect flow; the handler normalizes both into this struct.
type RazorpayCallback struct {
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature" binding:"required"`
	BookingID string `json:"booking_id" form:"booking_id"`
}

// PayUCallback is the server-to-server response PayU posts after checkout.
// Field set and ordering are fixed by the gateway's hash protocol; udf1
// carries the currency so the right salt can be selected on the way back.
type PayUCallback struct {
	TxnID       string `json:"txnid" form:"txnid" binding:"required"`
	Status      string `json:"status" form:"status" binding:"required"`
	Hash        string `json:"hash" form:"hash" binding:"required"`
	Amount      string `json:"amount" form:"amount"`
	ProductInfo string `json:"productinfo" form:"productinfo"`
	Firstname   string `json:"firstname" form:"firstname"`
	Email       string `json:"email" form:"email"`
	Key         string `json:"key" form:"key"`
	UDF1        string `json:"udf1" form:"udf1"`
}

// PayUOrderParams is what the checkout page needs to submit a PayU payment
// form, including the request hash computed server-side.
type PayUOrderParams struct {
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	Firstname   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SuccessURL  string `json:"surl"`
	FailureURL  string `json:"furl"`
	Hash        string `json:"hash"`
	UDF1        string `json:"udf1"`
	Currency    string `json:"currency"`
}

// EnrichmentPayload is the asynq task payload for post-confirmation work.
type EnrichmentPayload struct {
	BookingID string `json:"bookingId"`
}
