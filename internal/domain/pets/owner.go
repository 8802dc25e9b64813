package pets

import (
	"fmt"
	"strings"

	"petrack/internal/domain/users"
)

// OwnerKind es el discriminador que sólo existe al persistir (columna owner_kind).
type OwnerKind string

const (
	OwnerKindPerson  OwnerKind = "O"
	OwnerKindShelter OwnerKind = "S"
)

// Owner es el dueño actual de una mascota: una persona o un refugio.
// Sólo PersonOwner y ShelterOwner lo implementan.
type Owner interface {
	OwnerID() string
	Kind() OwnerKind
	isOwner()
}

type PersonOwner struct{ UserID string }

type ShelterOwner struct{ UserID string }

func (o PersonOwner) OwnerID() string  { return o.UserID }
func (o ShelterOwner) OwnerID() string { return o.UserID }

func (PersonOwner) Kind() OwnerKind  { return OwnerKindPerson }
func (ShelterOwner) Kind() OwnerKind { return OwnerKindShelter }

func (PersonOwner) isOwner()  {}
func (ShelterOwner) isOwner() {}

// MatchOwner obliga a tratar ambas variantes. Si aparece una tercera,
// todos los llamadores dejan de compilar hasta manejarla.
func MatchOwner[T any](o Owner, person func(PersonOwner) T, shelter func(ShelterOwner) T) T {
	switch v := o.(type) {
	case PersonOwner:
		return person(v)
	case ShelterOwner:
		return shelter(v)
	default:
		panic(fmt.Sprintf("pets: unknown owner variant %T", o))
	}
}

// IsShelter indica si la mascota está en manos de un refugio (adoptable).
func IsShelter(o Owner) bool {
	return MatchOwner(o,
		func(PersonOwner) bool { return false },
		func(ShelterOwner) bool { return true },
	)
}

// ParseOwner reconstruye el dueño desde (owner_kind, owner_id).
func ParseOwner(kind, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	switch OwnerKind(strings.ToUpper(strings.TrimSpace(kind))) {
	case OwnerKindPerson:
		return PersonOwner{UserID: id}, nil
	case OwnerKindShelter:
		return ShelterOwner{UserID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown owner kind %q", ErrInvalidInput, kind)
	}
}

// OwnerForAccount decide la variante según el tipo de cuenta.
// Veterinarios no pueden tener mascotas.
func OwnerForAccount(u users.User) (Owner, error) {
	switch u.Type {
	case users.TypeOwner:
		return PersonOwner{UserID: u.ID}, nil
	case users.TypeShelter:
		return ShelterOwner{UserID: u.ID}, nil
	default:
		return nil, ErrCannotOwnPets
	}
}
