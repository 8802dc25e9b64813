package transfers

import (
	"context"

	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
)

// ListFilter: campos vacíos no filtran. UserID matchea cualquiera de los dos lados.
type ListFilter struct {
	PetID  string
	UserID string
	Status Status
}

func (f ListFilter) Matches(r Request) bool {
	if f.PetID != "" && r.PetID != f.PetID {
		return false
	}
	if f.UserID != "" && r.CurrentOwnerID != f.UserID && r.NewOwnerID != f.UserID {
		return false
	}
	return f.Status == "" || r.Status == f.Status
}

// Repository: List ordena por RequestDate descendente.
type Repository interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, f ListFilter) ([]Request, error)
}

type Stores struct {
	Requests      Repository
	Pets          pets.Repository
	Notifications notifications.Repository
}

type Tx interface {
	RunInTx(ctx context.Context, fn func(Stores) error) error
}
