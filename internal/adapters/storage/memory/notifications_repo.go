package memory

import (
	"context"
	"errors"
	"sort"

	"petrack/internal/domain/notifications"
)

type notificationRepo struct{ v view }

func (r notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	return r.v.write(func(t *tables) error {
		if n.ID == "" {
			return errors.New("notification id required")
		}
		t.notifications[n.ID] = n
		return nil
	})
}

func (r notificationRepo) Update(ctx context.Context, n notifications.Notification) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.notifications[n.ID]; !exists {
			return notifications.ErrNotFound
		}
		t.notifications[n.ID] = n
		return nil
	})
}

func (r notificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	var out notifications.Notification
	err := r.v.read(func(t *tables) error {
		n, ok := t.notifications[id]
		if !ok {
			return notifications.ErrNotFound
		}
		out = n
		return nil
	})
	return out, err
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	out := make([]notifications.Notification, 0)
	err := r.v.read(func(t *tables) error {
		for _, n := range t.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	n := 0
	err := r.v.read(func(t *tables) error {
		for _, it := range t.notifications {
			if it.UserID == userID && !it.IsRead {
				n++
			}
		}
		return nil
	})
	return n, err
}
