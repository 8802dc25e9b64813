package locks

import (
	"context"
	"errors"
)

// ErrNotAcquired: no se consiguió el lock antes de que venciera el contexto o la espera.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializa operaciones sobre una misma clave (por ejemplo, una mascota).
// unlock es idempotente.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func PetKey(petID string) string {
	return "petrack:lock:pet:" + petID
}
