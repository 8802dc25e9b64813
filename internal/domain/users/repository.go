package users

import "context"

// Repository guarda cuentas. Email llega ya normalizado (lowercase) desde el service.
// Create y Update devuelven ErrEmailTaken si el email pertenece a otra cuenta.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByType(ctx context.Context, t Type) ([]User, error)
}
