// Package queue defines message payloads exchanged over the message broker.
package queue

// Payment event types published on the payment.events queue.
const (
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentApproved  = "payment.approved"
	EventPaymentRejected  = "payment.rejected"
)

// PaymentEvent is published on every payment-request state change. It
// carries enough for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type PaymentEvent struct {
	Type          string `json:"type"`
	TransactionID uint64 `json:"transaction_id"`
	VideoID       uint64 `json:"video_id"`
	UserID        uint64 `json:"user_id"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	TrxRef        string `json:"trx_ref"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
