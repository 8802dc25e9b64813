package pets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/domain/users"
)

func TestParseOwner(t *testing.T) {
	o, err := ParseOwner("S", "shelter-1")
	require.NoError(t, err)
	assert.Equal(t, ShelterOwner{UserID: "shelter-1"}, o)
	assert.True(t, IsShelter(o))

	o, err = ParseOwner(" o ", "ana")
	require.NoError(t, err)
	assert.Equal(t, PersonOwner{UserID: "ana"}, o)
	assert.False(t, IsShelter(o))

	_, err = ParseOwner("X", "ana")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseOwner("O", " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOwnerRoundTripsThroughKind(t *testing.T) {
	for _, o := range []Owner{PersonOwner{UserID: "a"}, ShelterOwner{UserID: "b"}} {
		back, err := ParseOwner(string(o.Kind()), o.OwnerID())
		require.NoError(t, err)
		assert.Equal(t, o, back)
	}
}

func TestOwnerForAccount(t *testing.T) {
	o, err := OwnerForAccount(users.User{ID: "s1", Type: users.TypeShelter})
	require.NoError(t, err)
	assert.Equal(t, ShelterOwner{UserID: "s1"}, o)

	o, err = OwnerForAccount(users.User{ID: "p1", Type: users.TypeOwner})
	require.NoError(t, err)
	assert.Equal(t, PersonOwner{UserID: "p1"}, o)

	_, err = OwnerForAccount(users.User{ID: "v1", Type: users.TypeVeterinarian})
	assert.ErrorIs(t, err, ErrCannotOwnPets)
}
