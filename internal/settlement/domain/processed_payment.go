// Package domain holds the settlement dedupe ledger.
package domain

import (
	"context"
	"time"
)

// PaymentKind classifies what a payment bought.
type PaymentKind string

const (
	PaymentContent      PaymentKind = "content"
	PaymentSubscription PaymentKind = "subscription"
)

// ProcessedPayment is one settled provider payment. The row exists so a
// replayed confirmation is recognized and never charged twice.
type ProcessedPayment struct {
	PaymentID   string
	UserID      int64
	Kind        PaymentKind
	ProcessedAt time.Time
}

// ProcessedPaymentRepository handles the dedupe ledger.
type ProcessedPaymentRepository interface {
	// MarkProcessed records the payment. Returns false without error when
	// the payment was already settled.
	MarkProcessed(ctx context.Context, payment ProcessedPayment) (bool, error)
}
