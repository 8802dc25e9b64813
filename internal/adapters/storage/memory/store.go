package memory

import (
	"context"
	"maps"
	"sync"

	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
)

type tables struct {
	users         map[string]users.User
	pets          map[string]pets.Pet
	adoptions     map[string]adoptions.Request
	transfers     map[string]transfers.Request
	notifications map[string]notifications.Notification
}

func (t tables) clone() tables {
	return tables{
		users:         maps.Clone(t.users),
		pets:          maps.Clone(t.pets),
		adoptions:     maps.Clone(t.adoptions),
		transfers:     maps.Clone(t.transfers),
		notifications: maps.Clone(t.notifications),
	}
}

// Store es el backend in-memory (dev/tests). Un único RWMutex cubre todas las
// tablas; las transacciones toman el lock de escritura completo y, si fallan,
// restauran la foto tomada al inicio.
type Store struct {
	mu   sync.RWMutex
	data tables
}

func NewStore() *Store {
	return &Store{data: tables{
		users:         map[string]users.User{},
		pets:          map[string]pets.Pet{},
		adoptions:     map[string]adoptions.Request{},
		transfers:     map[string]transfers.Request{},
		notifications: map[string]notifications.Notification{},
	}}
}

// view es el acceso de un repo a las tablas. Dentro de una transacción el
// lock ya está tomado y no se vuelve a pedir.
type view struct {
	s  *Store
	tx bool
}

func (v view) read(fn func(t *tables) error) error {
	if !v.tx {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
	}
	return fn(&v.s.data)
}

func (v view) write(fn func(t *tables) error) error {
	if !v.tx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(&v.s.data)
}

func (s *Store) runInTx(fn func(v view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(view{s: s, tx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() users.Repository                 { return userRepo{view{s: s}} }
func (s *Store) Pets() pets.Repository                   { return petRepo{view{s: s}} }
func (s *Store) Adoptions() adoptions.Repository         { return adoptionRepo{view{s: s}} }
func (s *Store) Transfers() transfers.Repository         { return transferRepo{view{s: s}} }
func (s *Store) Notifications() notifications.Repository { return notificationRepo{view{s: s}} }

// Mientras corre fn no se puede usar ningún repo obtenido fuera de la transacción.
func (s *Store) AdoptionsTx() adoptions.Tx { return adoptionsTx{s} }
func (s *Store) TransfersTx() transfers.Tx { return transfersTx{s} }

type adoptionsTx struct{ s *Store }

func (t adoptionsTx) RunInTx(ctx context.Context, fn func(adoptions.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.s.runInTx(func(v view) error {
		return fn(adoptions.Stores{
			Requests:      adoptionRepo{v},
			Pets:          petRepo{v},
			Notifications: notificationRepo{v},
		})
	})
}

type transfersTx struct{ s *Store }

func (t transfersTx) RunInTx(ctx context.Context, fn func(transfers.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.s.runInTx(func(v view) error {
		return fn(transfers.Stores{
			Requests:      transferRepo{v},
			Pets:          petRepo{v},
			Notifications: notificationRepo{v},
		})
	})
}
