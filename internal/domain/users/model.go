package users

import (
	"strings"
	"time"
)

// Type es el tipo de cuenta.
// @Enum O, S, V
type Type string

const (
	TypeOwner        Type = "O"
	TypeShelter      Type = "S"
	TypeVeterinarian Type = "V"
)

func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeOwner, TypeShelter, TypeVeterinarian:
		return t, true
	default:
		return "", false
	}
}

// CanOwnPets: sólo dueños y refugios pueden tener mascotas a su nombre.
func (t Type) CanOwnPets() bool {
	return t == TypeOwner || t == TypeShelter
}

// Profile agrupa los datos que dependen del tipo de cuenta.
// Owner usa CompleteName; shelter y vet usan el resto (ClinicName sólo vet).
type Profile struct {
	CompleteName string

	Name         string
	ClinicName   string
	Address      string
	CoverPicture string
	WorkingDays  string
	WorkingHours string
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Type         Type

	ProfilePicture string
	PhoneNumber    string
	Profile        Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName es lo que se muestra en listados y notificaciones.
func (u User) DisplayName() string {
	if u.Type == TypeOwner && u.Profile.CompleteName != "" {
		return u.Profile.CompleteName
	}
	if u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}
