// Package repository implements raw-SQL persistence for users, videos
// and payment transactions. This file defines the sentinel errors
// shared across repositories so handlers can translate failures into
// specific HTTP responses without inspecting driver errors.
package repository

import "errors"

// ErrUserNotFound is returned when a user id or email does not resolve
// to a stored record.
var ErrUserNotFound = errors.New("user not found")

// ErrVideoNotFound is returned when a video id does not resolve to a
// stored record.
var ErrVideoNotFound = errors.New("video not found")

// ErrTransactionNotFound is returned when a transaction id does not
// resolve to a *pending* record. A transaction that was already
// approved or rejected is deliberately indistinguishable from a
// missing one: resolved states are terminal and the caller is told
// the same thing either way.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrEmailExists signals a violation of the unique index on
// users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateReference signals that a payment claim reuses a
// transaction reference that was already submitted. The unique index
// on transactions.trx_ref is the anti-fraud key for the whole payment
// workflow.
var ErrDuplicateReference = errors.New("transaction reference already used")
