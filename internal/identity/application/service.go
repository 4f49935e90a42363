// Package application provides identity use cases.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirelabalan/fanvault/internal/identity/domain"
	sharedApp "github.com/mirelabalan/fanvault/internal/shared/application"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
)

// Service tracks users across every inbound interaction.
type Service struct {
	users  domain.Repository
	outbox outbox.Repository
	uow    sharedApp.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new identity service.
func NewService(users domain.Repository, outboxRepo outbox.Repository, uow sharedApp.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		outbox: outboxRepo,
		uow:    uow,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Touch registers the user on first contact or refreshes their profile
// and interaction counters on subsequent contacts.
func (s *Service) Touch(ctx context.Context, id int64, username, displayName string) (*domain.User, error) {
	var user *domain.User

	err := sharedApp.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		existing, err := s.users.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}

		if existing == nil {
			user = domain.NewUser(id, username, displayName, s.now().UTC())
		} else {
			user = existing
			user.Touch(username, displayName, s.now().UTC())
		}

		if err := s.users.Save(txCtx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		events := user.DomainEvents()
		if len(events) > 0 {
			sharedApp.ApplyEventMetadata(events, sharedApp.NewEventMetadata(id))
			for _, event := range events {
				msg, err := outbox.NewMessage(event)
				if err != nil {
					return fmt.Errorf("build outbox message: %w", err)
				}
				if err := s.outbox.Save(txCtx, msg); err != nil {
					return fmt.Errorf("save outbox message: %w", err)
				}
			}
			user.ClearDomainEvents()
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
