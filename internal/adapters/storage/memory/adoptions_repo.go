package memory

import (
	"context"
	"errors"
	"sort"

	"petrack/internal/domain/adoptions"
)

type adoptionRepo struct{ v view }

func (r adoptionRepo) Create(ctx context.Context, req adoptions.Request) error {
	return r.v.write(func(t *tables) error {
		if req.ID == "" {
			return errors.New("adoption request id required")
		}
		if _, exists := t.adoptions[req.ID]; exists {
			return errors.New("adoption request already exists")
		}
		t.adoptions[req.ID] = req
		return nil
	})
}

func (r adoptionRepo) Update(ctx context.Context, req adoptions.Request) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.adoptions[req.ID]; !exists {
			return adoptions.ErrNotFound
		}
		t.adoptions[req.ID] = req
		return nil
	})
}

func (r adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	var out adoptions.Request
	err := r.v.read(func(t *tables) error {
		req, ok := t.adoptions[id]
		if !ok {
			return adoptions.ErrNotFound
		}
		out = req
		return nil
	})
	return out, err
}

func (r adoptionRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Request, error) {
	out := make([]adoptions.Request, 0)
	err := r.v.read(func(t *tables) error {
		for _, req := range t.adoptions {
			if f.Matches(req) {
				out = append(out, req)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestDate.After(out[j].RequestDate)
	})
	return out, err
}
