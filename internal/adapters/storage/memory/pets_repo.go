package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"petrack/internal/domain/pets"
)

type petRepo struct{ v view }

func (r petRepo) Create(ctx context.Context, p pets.Pet) error {
	return r.v.write(func(t *tables) error {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("pet id required")
		}
		if p.Owner == nil {
			return errors.New("pet owner required")
		}
		if _, exists := t.pets[p.ID]; exists {
			return errors.New("pet already exists")
		}
		t.pets[p.ID] = p
		return nil
	})
}

func (r petRepo) Update(ctx context.Context, p pets.Pet) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.pets[p.ID]; !exists {
			return pets.ErrNotFound
		}
		t.pets[p.ID] = p
		return nil
	})
}

func (r petRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.pets[id]; !exists {
			return pets.ErrNotFound
		}
		delete(t.pets, id)
		return nil
	})
}

func (r petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	var out pets.Pet
	err := r.v.read(func(t *tables) error {
		p, ok := t.pets[id]
		if !ok {
			return pets.ErrNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (r petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	err := r.v.read(func(t *tables) error {
		for _, p := range t.pets {
			if f.OwnerID != "" && p.Owner.OwnerID() != f.OwnerID {
				continue
			}
			if f.OwnerKind != "" && p.Owner.Kind() != f.OwnerKind {
				continue
			}
			out = append(out, p)
		}
		return nil
	})

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (r petRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	n := 0
	err := r.v.read(func(t *tables) error {
		for _, p := range t.pets {
			if p.Owner.OwnerID() == ownerID {
				n++
			}
		}
		return nil
	})
	return n, err
}
