package pets

import "context"

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	OwnerID   string
	OwnerKind OwnerKind
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, f ListFilter) ([]Pet, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
