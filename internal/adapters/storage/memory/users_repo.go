package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"petrack/internal/domain/users"
)

type userRepo struct{ v view }

func (r userRepo) Create(ctx context.Context, u users.User) error {
	return r.v.write(func(t *tables) error {
		if strings.TrimSpace(u.ID) == "" {
			return errors.New("user id required")
		}
		if _, exists := t.users[u.ID]; exists {
			return errors.New("user already exists")
		}
		if emailTaken(t, u.Email, u.ID) {
			return users.ErrEmailTaken
		}
		t.users[u.ID] = u
		return nil
	})
}

func (r userRepo) Update(ctx context.Context, u users.User) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.users[u.ID]; !exists {
			return users.ErrNotFound
		}
		if emailTaken(t, u.Email, u.ID) {
			return users.ErrEmailTaken
		}
		t.users[u.ID] = u
		return nil
	})
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.users[id]; !exists {
			return users.ErrNotFound
		}
		delete(t.users, id)
		return nil
	})
}

func (r userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	var out users.User
	err := r.v.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return users.ErrNotFound
		}
		out = u
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	var out users.User
	err := r.v.read(func(t *tables) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return users.ErrNotFound
	})
	return out, err
}

func (r userRepo) ListByType(ctx context.Context, ut users.Type) ([]users.User, error) {
	out := make([]users.User, 0)
	err := r.v.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Type == ut {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func emailTaken(t *tables, email, selfID string) bool {
	for id, u := range t.users {
		if id != selfID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
