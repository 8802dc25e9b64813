package notifications

import (
	"context"
	"errors"
	"strings"

	"petrack/internal/platform/logger"
	"petrack/internal/platform/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("notification not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo      Repository
	publisher Publisher
	log       logger.Logger
}

func NewService(repo Repository, publisher Publisher, log logger.Logger) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log.With(logger.Fields{"component": "notifications"}),
	}
}

// Notify persiste y despacha. Los workflows no lo usan: escriben con el repo
// de su transacción y llaman Dispatch después del commit.
func (s *Service) Notify(ctx context.Context, ns ...Notification) error {
	for _, n := range ns {
		if strings.TrimSpace(n.UserID) == "" || strings.TrimSpace(n.Message) == "" {
			return ErrInvalidInput
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
	}
	s.Dispatch(ctx, ns)
	return nil
}

// Dispatch publica notificaciones ya persistidas. Es best-effort: un fallo
// se loguea y no afecta lo que ya se confirmó.
func (s *Service) Dispatch(ctx context.Context, ns []Notification) {
	if len(ns) == 0 {
		return
	}
	metrics.ObserveNotifications(len(ns))

	if err := s.publisher.Publish(ctx, ns); err != nil {
		metrics.ObservePublishFailure()
		s.log.Warn("notification publish failed", logger.Fields{
			"count": len(ns),
			"err":   err,
		})
	}
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// MarkAsRead es idempotente para el destinatario.
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != strings.TrimSpace(userID) {
		return Notification{}, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	n.IsRead = true
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(ctx, userID)
}
