// Package application settles confirmed provider payments into
// entitlements and triggers content delivery.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	entitlementApp "github.com/mirelabalan/fanvault/internal/entitlement/application"
	entitlementDomain "github.com/mirelabalan/fanvault/internal/entitlement/domain"
	"github.com/mirelabalan/fanvault/internal/settlement/domain"
	sharedApp "github.com/mirelabalan/fanvault/internal/shared/application"
	"github.com/mirelabalan/fanvault/pkg/observability"
)

// ErrUnknownItem is returned when a payment references an item that is
// no longer in the catalog. The payment stays unsettled so the operator
// can investigate and refund.
var ErrUnknownItem = errors.New("payment references an unknown item")

// Entitler is the slice of the entitlement engine settlement drives.
type Entitler interface {
	Renew(ctx context.Context, userID int64) (*entitlementDomain.Subscription, error)
	RecordPurchase(ctx context.Context, userID int64, item *catalogDomain.ContentItem) (entitlementApp.PurchaseOutcome, error)
}

// ItemFinder looks up catalog items at settlement time.
type ItemFinder interface {
	FindItem(ctx context.Context, name string) (*catalogDomain.ContentItem, error)
}

// Deliverer sends a purchased asset to its new owner.
type Deliverer interface {
	Deliver(ctx context.Context, userID int64, item *catalogDomain.ContentItem) error
}

// PaymentRecord is a confirmed payment as reported by the provider.
type PaymentRecord struct {
	PaymentID string
	UserID    int64
	Amount    int64
	Payload   string
}

// SettlementResult describes what a payment bought.
type SettlementResult struct {
	// Duplicate is true when the payment was already settled and this
	// confirmation changed nothing.
	Duplicate bool

	Kind domain.PaymentKind

	// Subscription is set for subscription payments.
	Subscription *entitlementDomain.Subscription

	// Item and Outcome are set for content payments.
	Item    *catalogDomain.ContentItem
	Outcome entitlementApp.PurchaseOutcome

	// Delivered is true when the purchased asset reached the user.
	Delivered bool
}

// Handler turns payment confirmations into ledger writes. The dedupe
// row, the entitlement, and the user's spend all commit in one
// transaction; delivery happens only after that commit succeeds.
type Handler struct {
	processed domain.ProcessedPaymentRepository
	engine    Entitler
	catalog   ItemFinder
	deliverer Deliverer
	uow       sharedApp.UnitOfWork
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time
}

// NewHandler creates a new settlement handler.
func NewHandler(
	processed domain.ProcessedPaymentRepository,
	engine Entitler,
	catalog ItemFinder,
	deliverer Deliverer,
	uow sharedApp.UnitOfWork,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		processed: processed,
		engine:    engine,
		catalog:   catalog,
		deliverer: deliverer,
		uow:       uow,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// WithMetrics attaches a metrics collector.
func (h *Handler) WithMetrics(metrics observability.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// Settle applies a confirmed payment. Settling the same payment ID
// twice reports Duplicate and changes nothing, so provider retries and
// webhook replays are harmless.
func (h *Handler) Settle(ctx context.Context, record PaymentRecord) (SettlementResult, error) {
	started := h.now()

	payload, err := DecodePayload(record.Payload)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("decode payload %q: %w", record.Payload, err)
	}

	result := SettlementResult{Kind: payload.Kind}

	err = sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		fresh, err := h.processed.MarkProcessed(txCtx, domain.ProcessedPayment{
			PaymentID:   record.PaymentID,
			UserID:      payload.UserID,
			Kind:        payload.Kind,
			ProcessedAt: h.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("mark payment processed: %w", err)
		}
		if !fresh {
			result.Duplicate = true
			return nil
		}

		switch payload.Kind {
		case domain.PaymentSubscription:
			sub, err := h.engine.Renew(txCtx, payload.UserID)
			if err != nil {
				return fmt.Errorf("renew subscription: %w", err)
			}
			result.Subscription = sub
			return nil

		default:
			item, err := h.catalog.FindItem(txCtx, payload.ItemName)
			if err != nil {
				return fmt.Errorf("find item: %w", err)
			}
			if item == nil {
				return fmt.Errorf("%w: %s", ErrUnknownItem, payload.ItemName)
			}

			outcome, err := h.engine.RecordPurchase(txCtx, payload.UserID, item)
			if err != nil {
				return fmt.Errorf("record purchase: %w", err)
			}
			result.Item = item
			result.Outcome = outcome
			return nil
		}
	})
	if err != nil {
		return SettlementResult{}, err
	}

	if result.Duplicate {
		h.metrics.Counter(observability.MetricPaymentsDuplicate, 1)
		h.logger.Info("duplicate payment ignored",
			"payment_id", record.PaymentID,
			"user_id", payload.UserID,
		)
		return result, nil
	}

	h.metrics.Counter(observability.MetricPaymentsSettled, 1, observability.T("kind", string(payload.Kind)))
	h.metrics.Timing(observability.MetricSettlementDuration, h.now().Sub(started))
	h.logger.Info("payment settled",
		"payment_id", record.PaymentID,
		"user_id", payload.UserID,
		"kind", payload.Kind,
		"amount", record.Amount,
	)

	// The entitlement is already committed; a failed send must not undo
	// it. The user can request the content again at no charge.
	if result.Item != nil && result.Outcome == entitlementApp.PurchaseCreated {
		if err := h.deliverer.Deliver(ctx, payload.UserID, result.Item); err != nil {
			h.logger.Error("delivery failed after settlement",
				"payment_id", record.PaymentID,
				"user_id", payload.UserID,
				"item", result.Item.Name(),
				"error", err,
			)
		} else {
			result.Delivered = true
		}
	}

	return result, nil
}
