package model

import "time"

// Transaction records a user's claim that a mobile-money payment was
// made for a premium video. The transaction reference (TrxRef) is the
// anti-duplicate key: it is unique across all transactions and a
// second submission with the same reference is rejected outright.
//
// Lifecycle: created as pending, then resolved exactly once by an
// administrator. Approval appends the video to the user's unlocked
// set; rejection has no side effect. Both outcomes are terminal.
//
// Fields:
//  ID           – primary key identifier.
//  VideoID      – video the payment is for.
//  UserID       – user who submitted the claim.
//  Amount       – paid amount in integer units.
//  Method       – mobile-money provider (bkash, nagad or rocket).
//  MobileNumber – payer's mobile number.
//  TrxRef       – unique transaction reference supplied by the payer.
//  Status       – pending, approved or rejected.
//  CreatedAt    – submission timestamp, drives newest-first ordering.
type Transaction struct {
	ID           uint64            `json:"id"`           // transactions.id
	VideoID      uint64            `json:"videoId"`      // transactions.video_id
	UserID       uint64            `json:"userId"`       // transactions.user_id
	Amount       int64             `json:"amount"`       // transactions.amount
	Method       PaymentMethod     `json:"method"`       // transactions.method
	MobileNumber string            `json:"mobileNumber"` // transactions.mobile_number
	TrxRef       string            `json:"trxId"`        // transactions.trx_ref
	Status       TransactionStatus `json:"status"`       // transactions.status
	CreatedAt    time.Time         `json:"createdAt"`    // transactions.created_at
}

// PaymentMethod enumerates the supported mobile-money providers.
type PaymentMethod string

const (
	MethodBkash  PaymentMethod = "bkash"
	MethodNagad  PaymentMethod = "nagad"
	MethodRocket PaymentMethod = "rocket"
)

// Valid reports whether the method is one of the supported providers.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBkash, MethodNagad, MethodRocket:
		return true
	}
	return false
}

// TransactionStatus is the review state of a payment claim.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)
