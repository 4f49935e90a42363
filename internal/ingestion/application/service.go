// Package application drives the operator's upload sessions.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	catalogApp "github.com/mirelabalan/fanvault/internal/catalog/application"
	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	"github.com/mirelabalan/fanvault/internal/ingestion/domain"
)

// ErrNoSession is returned when the operator has no upload in progress.
var ErrNoSession = errors.New("no upload session in progress")

// SessionStore persists in-progress sessions between chat messages.
type SessionStore interface {
	// Get retrieves the operator's session. Returns nil if absent.
	Get(ctx context.Context, operatorID int64) (*domain.Session, error)

	// Put writes the operator's session.
	Put(ctx context.Context, session *domain.Session) error

	// Delete removes the operator's session. Deleting an absent session
	// is not an error.
	Delete(ctx context.Context, operatorID int64) error
}

// Publisher is the slice of the catalog the wizard needs: collision
// checks while the name is chosen, and the final publish.
type Publisher interface {
	FindItem(ctx context.Context, name string) (*catalogDomain.ContentItem, error)
	AddItem(ctx context.Context, params catalogApp.AddItemParams) (*catalogDomain.ContentItem, error)
}

// Progress is the state after one wizard input. Published is set only
// when the input completed the session.
type Progress struct {
	Session   *domain.Session
	Published *catalogDomain.ContentItem
}

// Service runs the upload wizard for operators.
type Service struct {
	sessions SessionStore
	catalog  Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new ingestion service.
func NewService(sessions SessionStore, catalog Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start opens a fresh upload session, replacing any session the
// operator abandoned mid-way.
func (s *Service) Start(ctx context.Context, operatorID int64, pool catalogDomain.Pool) (*domain.Session, error) {
	session := domain.NewSession(operatorID, pool, s.now().UTC())
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("upload session started", "operator_id", operatorID, "pool", pool)
	return session, nil
}

// Current returns the operator's in-progress session, or ErrNoSession.
func (s *Service) Current(ctx context.Context, operatorID int64) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

// Cancel discards the operator's session. Returns false when there was
// nothing to cancel.
func (s *Service) Cancel(ctx context.Context, operatorID int64) (bool, error) {
	session, err := s.sessions.Get(ctx, operatorID)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return false, nil
	}
	if err := s.sessions.Delete(ctx, operatorID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("upload session cancelled", "operator_id", operatorID)
	return true, nil
}

// SubmitAsset feeds an uploaded asset into the session.
func (s *Service) SubmitAsset(ctx context.Context, operatorID int64, assetRef string) (*domain.Session, error) {
	session, err := s.Current(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	if err := session.ApplyAsset(assetRef); err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// SubmitText feeds a text reply into the session. What the text means
// depends on the step: a name, a price, or a description. Completing
// the final step publishes the item and ends the session.
func (s *Service) SubmitText(ctx context.Context, operatorID int64, text string) (Progress, error) {
	session, err := s.Current(ctx, operatorID)
	if err != nil {
		return Progress{}, err
	}

	text = strings.TrimSpace(text)

	switch session.Step {
	case domain.StepAwaitingName:
		if err := s.applyName(ctx, session, text); err != nil {
			return Progress{}, err
		}
	case domain.StepAwaitingPrice:
		price, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Progress{}, catalogDomain.ErrItemPriceInvalid
		}
		if err := session.ApplyPrice(price); err != nil {
			return Progress{}, err
		}
	case domain.StepAwaitingDescription:
		if err := session.ApplyDescription(text); err != nil {
			return Progress{}, err
		}
	default:
		return Progress{}, domain.ErrUnexpectedInput
	}

	if !session.Complete() {
		if err := s.sessions.Put(ctx, session); err != nil {
			return Progress{}, fmt.Errorf("store session: %w", err)
		}
		return Progress{Session: session}, nil
	}

	return s.publish(ctx, session)
}

// applyName checks the catalog for a collision before accepting the
// name, so the operator hears about the clash while they can still pick
// another.
func (s *Service) applyName(ctx context.Context, session *domain.Session, name string) error {
	if err := catalogDomain.ValidateName(name); err != nil {
		return err
	}
	existing, err := s.catalog.FindItem(ctx, name)
	if err != nil {
		return fmt.Errorf("check name collision: %w", err)
	}
	if existing != nil {
		return catalogDomain.ErrNameTaken
	}
	return session.ApplyName(name)
}

// publish hands the finished draft to the catalog. The session is
// discarded either way: a failed publish means the draft was rejected,
// and keeping it would trap the operator in a dead session.
func (s *Service) publish(ctx context.Context, session *domain.Session) (Progress, error) {
	if err := s.sessions.Delete(ctx, session.OperatorID); err != nil {
		return Progress{}, fmt.Errorf("delete session: %w", err)
	}

	item, err := s.catalog.AddItem(ctx, catalogApp.AddItemParams{
		Name:        session.Name,
		Price:       session.Price,
		AssetRef:    session.AssetRef,
		AssetKind:   session.AssetKind,
		Description: session.Description,
		Pool:        session.Pool,
	})
	if err != nil {
		return Progress{}, fmt.Errorf("publish item: %w", err)
	}

	s.logger.Info("upload session published",
		"operator_id", session.OperatorID,
		"item", item.Name(),
		"pool", item.Pool(),
	)
	return Progress{Session: session, Published: item}, nil
}
