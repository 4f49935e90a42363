// Package application provides the entitlement engine, the single
// writer of the purchase and subscription ledger.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	"github.com/mirelabalan/fanvault/internal/entitlement/domain"
	identityDomain "github.com/mirelabalan/fanvault/internal/identity/domain"
	sharedApp "github.com/mirelabalan/fanvault/internal/shared/application"
	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
	"github.com/mirelabalan/fanvault/pkg/observability"
)

// SubscriptionStatus is a point-in-time view of a user's subscription.
type SubscriptionStatus struct {
	Active        bool
	ExpiresAt     time.Time
	DaysRemaining int
	Renewals      int64
}

// PurchaseOutcome tells a settlement caller whether the payment bought
// anything new.
type PurchaseOutcome string

const (
	// PurchaseCreated means the ledger gained a new entitlement.
	PurchaseCreated PurchaseOutcome = "created"
	// PurchaseAlreadyOwned means the user already held the entitlement.
	PurchaseAlreadyOwned PurchaseOutcome = "already_owned"
)

// Engine owns all writes to the entitlement ledger. Every access
// decision and every settlement effect goes through it.
type Engine struct {
	subs      domain.SubscriptionRepository
	purchases domain.PurchaseRepository
	users     identityDomain.Repository
	outbox    outbox.Repository
	uow       sharedApp.UnitOfWork
	period    time.Duration
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time
}

// NewEngine creates a new entitlement engine. period is the length of
// one paid subscription interval.
func NewEngine(
	subs domain.SubscriptionRepository,
	purchases domain.PurchaseRepository,
	users identityDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApp.UnitOfWork,
	period time.Duration,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		subs:      subs,
		purchases: purchases,
		users:     users,
		outbox:    outboxRepo,
		uow:       uow,
		period:    period,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithMetrics attaches a metrics collector.
func (e *Engine) WithMetrics(metrics observability.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// SubscriptionStatus returns the user's subscription state. An expired
// row is deactivated on first sight, so the lapse is recorded even
// though no scheduler watches expiry times.
func (e *Engine) SubscriptionStatus(ctx context.Context, userID int64) (SubscriptionStatus, error) {
	now := e.now().UTC()

	sub, err := e.subs.FindByUserID(ctx, userID)
	if err != nil {
		return SubscriptionStatus{}, fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return SubscriptionStatus{}, nil
	}

	if sub.Active() && !sub.IsCurrent(now) {
		if err := e.deactivate(ctx, sub, now); err != nil {
			return SubscriptionStatus{}, err
		}
	}

	return SubscriptionStatus{
		Active:        sub.IsCurrent(now),
		ExpiresAt:     sub.ExpiresAt(),
		DaysRemaining: sub.DaysRemaining(now),
		Renewals:      sub.Renewals(),
	}, nil
}

func (e *Engine) deactivate(ctx context.Context, sub *domain.Subscription, now time.Time) error {
	err := sharedApp.WithUnitOfWork(ctx, e.uow, func(txCtx context.Context) error {
		if !sub.Deactivate(now) {
			return nil
		}
		if err := e.subs.Upsert(txCtx, sub); err != nil {
			return fmt.Errorf("deactivate subscription: %w", err)
		}
		return e.drainEvents(txCtx, sub.UserID(), sub.DomainEvents(), sub.ClearDomainEvents)
	})
	if err != nil {
		return err
	}

	e.metrics.Counter(observability.MetricSubscriptionLapses, 1)
	e.logger.Info("subscription lapsed",
		"user_id", sub.UserID(),
		"expired_at", sub.ExpiresAt(),
	)
	return nil
}

// Renew starts or extends the user's subscription by one period. A
// current subscription extends from its expiry date, so paying early
// never costs days.
func (e *Engine) Renew(ctx context.Context, userID int64) (*domain.Subscription, error) {
	now := e.now().UTC()
	var sub *domain.Subscription

	err := sharedApp.WithUnitOfWork(ctx, e.uow, func(txCtx context.Context) error {
		existing, err := e.subs.FindByUserIDForUpdate(txCtx, userID)
		if err != nil {
			return fmt.Errorf("find subscription: %w", err)
		}

		if existing == nil {
			sub = domain.NewSubscription(userID, now, e.period)
		} else {
			sub = existing
			sub.Renew(now, e.period)
		}

		if err := e.subs.Upsert(txCtx, sub); err != nil {
			return fmt.Errorf("save subscription: %w", err)
		}

		return e.drainEvents(txCtx, userID, sub.DomainEvents(), sub.ClearDomainEvents)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Counter(observability.MetricSubscriptionRenewals, 1)
	e.logger.Info("subscription renewed",
		"user_id", userID,
		"expires_at", sub.ExpiresAt(),
		"renewals", sub.Renewals(),
	)
	return sub, nil
}

// RecordPurchase grants the user a permanent entitlement to the item.
// Recording the same purchase twice is safe: the second call reports
// PurchaseAlreadyOwned and changes nothing.
func (e *Engine) RecordPurchase(ctx context.Context, userID int64, item *catalogDomain.ContentItem) (PurchaseOutcome, error) {
	now := e.now().UTC()
	outcome := PurchaseAlreadyOwned

	err := sharedApp.WithUnitOfWork(ctx, e.uow, func(txCtx context.Context) error {
		purchase := domain.NewPurchase(userID, item.Name(), item.Price(), now)

		created, err := e.purchases.Insert(txCtx, purchase)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		if !created {
			return nil
		}
		outcome = PurchaseCreated

		user, err := e.users.FindByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user != nil {
			user.AddSpend(item.Price())
			if err := e.users.Save(txCtx, user); err != nil {
				return fmt.Errorf("update user spend: %w", err)
			}
		}

		return e.drainEvents(txCtx, userID, purchase.DomainEvents(), purchase.ClearDomainEvents)
	})
	if err != nil {
		return "", err
	}

	if outcome == PurchaseCreated {
		e.metrics.Counter(observability.MetricPurchasesRecorded, 1)
		e.logger.Info("purchase recorded",
			"user_id", userID,
			"item", item.Name(),
			"price", item.Price(),
		)
	}
	return outcome, nil
}

// Owns reports whether the user has purchased the item.
func (e *Engine) Owns(ctx context.Context, userID int64, itemName string) (bool, error) {
	return e.purchases.Exists(ctx, userID, itemName)
}

// SubscriptionActive reports whether the user holds a current
// subscription, deactivating an expired row on the way.
func (e *Engine) SubscriptionActive(ctx context.Context, userID int64) (bool, error) {
	status, err := e.SubscriptionStatus(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.Active, nil
}

// ItemHasPurchases reports whether any user has ever purchased the item.
func (e *Engine) ItemHasPurchases(ctx context.Context, itemName string) (bool, error) {
	return e.purchases.ExistsForItem(ctx, itemName)
}

// Library returns the names of the items the user owns, newest first.
func (e *Engine) Library(ctx context.Context, userID int64) ([]*domain.Purchase, error) {
	return e.purchases.FindByUser(ctx, userID)
}

// CanAccessFree decides whether the user may receive the item without
// paying, and names the reason when they may not.
func (e *Engine) CanAccessFree(ctx context.Context, userID int64, item *catalogDomain.ContentItem) (bool, sharedDomain.DenialReason, error) {
	if item.Pool() == catalogDomain.PoolSubscription {
		active, err := e.SubscriptionActive(ctx, userID)
		if err != nil {
			return false, "", err
		}
		if !active {
			return false, sharedDomain.DenialSubscriptionRequired, nil
		}
		return true, "", nil
	}

	owned, err := e.Owns(ctx, userID, item.Name())
	if err != nil {
		return false, "", err
	}
	if !owned {
		return false, sharedDomain.DenialNotOwned, nil
	}
	return true, "", nil
}

func (e *Engine) drainEvents(ctx context.Context, userID int64, events []sharedDomain.DomainEvent, clear func()) error {
	if len(events) == 0 {
		return nil
	}
	sharedApp.ApplyEventMetadata(events, sharedApp.NewEventMetadata(userID))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("build outbox message: %w", err)
		}
		if err := e.outbox.Save(ctx, msg); err != nil {
			return fmt.Errorf("save outbox message: %w", err)
		}
	}
	clear()
	return nil
}
