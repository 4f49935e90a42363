// Package delivery sends purchased assets to users over the chat
// platform.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	"github.com/mirelabalan/fanvault/pkg/observability"
)

// ErrSendUnavailable is returned while the circuit breaker holds sends
// back after repeated platform failures.
var ErrSendUnavailable = errors.New("content delivery temporarily unavailable")

// Sender is the chat platform's outbound media API.
type Sender interface {
	SendPhoto(ctx context.Context, userID int64, assetRef, caption string) error
	SendVideo(ctx context.Context, userID int64, assetRef, caption string) error
	SendDocument(ctx context.Context, userID int64, assetRef, caption string) error
}

// Dispatcher routes an asset to the right send method and shields the
// rest of the system from a flapping chat platform with a circuit
// breaker. A failed send never rolls back the entitlement that
// triggered it; the user owns the content and can ask again.
type Dispatcher struct {
	sender  Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		metrics: observability.NoopMetrics{},
	}

	d.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name: "content-delivery",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("delivery breaker state changed",
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return d
}

// WithMetrics attaches a metrics collector.
func (d *Dispatcher) WithMetrics(metrics observability.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// Deliver sends the item's asset to the user.
func (d *Dispatcher) Deliver(ctx context.Context, userID int64, item *catalogDomain.ContentItem) error {
	_, err := d.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, d.send(ctx, userID, item)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		d.metrics.Counter(observability.MetricDeliveryTripped, 1)
		return ErrSendUnavailable
	case err != nil:
		d.metrics.Counter(observability.MetricDeliveryErrors, 1)
		return fmt.Errorf("deliver %s to user %d: %w", item.Name(), userID, err)
	}

	d.metrics.Counter(observability.MetricDeliveries, 1, observability.T("kind", string(item.AssetKind())))
	return nil
}

func (d *Dispatcher) send(ctx context.Context, userID int64, item *catalogDomain.ContentItem) error {
	caption := item.Description()

	switch item.AssetKind() {
	case catalogDomain.AssetPhoto:
		return d.sender.SendPhoto(ctx, userID, item.AssetRef(), caption)
	case catalogDomain.AssetVideo:
		return d.sender.SendVideo(ctx, userID, item.AssetRef(), caption)
	default:
		return d.sender.SendDocument(ctx, userID, item.AssetRef(), caption)
	}
}
