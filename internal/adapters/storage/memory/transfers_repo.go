package memory

import (
	"context"
	"errors"
	"sort"

	"petrack/internal/domain/transfers"
)

type transferRepo struct{ v view }

func (r transferRepo) Create(ctx context.Context, req transfers.Request) error {
	return r.v.write(func(t *tables) error {
		if req.ID == "" {
			return errors.New("transfer request id required")
		}
		if _, exists := t.transfers[req.ID]; exists {
			return errors.New("transfer request already exists")
		}
		t.transfers[req.ID] = req
		return nil
	})
}

func (r transferRepo) Update(ctx context.Context, req transfers.Request) error {
	return r.v.write(func(t *tables) error {
		if _, exists := t.transfers[req.ID]; !exists {
			return transfers.ErrNotFound
		}
		t.transfers[req.ID] = req
		return nil
	})
}

func (r transferRepo) GetByID(ctx context.Context, id string) (transfers.Request, error) {
	var out transfers.Request
	err := r.v.read(func(t *tables) error {
		req, ok := t.transfers[id]
		if !ok {
			return transfers.ErrNotFound
		}
		out = req
		return nil
	})
	return out, err
}

func (r transferRepo) List(ctx context.Context, f transfers.ListFilter) ([]transfers.Request, error) {
	out := make([]transfers.Request, 0)
	err := r.v.read(func(t *tables) error {
		for _, req := range t.transfers {
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
