package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	Update(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	// ListByUser devuelve las más nuevas primero.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Publisher reenvía notificaciones ya confirmadas a un canal externo.
type Publisher interface {
	Publish(ctx context.Context, ns []Notification) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []Notification) error { return nil }
