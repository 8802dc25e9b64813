package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func seedPet(t *testing.T, s *Store, id string, owner pets.Owner) pets.Pet {
	t.Helper()
	p := pets.Pet{ID: id, Owner: owner, Name: id, Species: "dog", CreatedAt: t0}
	require.NoError(t, s.Pets().Create(context.Background(), p))
	return p
}

func TestRunInTxRollsBackEveryTable(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPet(t, s, "luna", pets.ShelterOwner{UserID: "refugio"})

	boom := errors.New("boom")
	err := s.AdoptionsTx().RunInTx(ctx, func(st adoptions.Stores) error {
		if _, err := pets.Reassign(ctx, st.Pets, "luna", pets.PersonOwner{UserID: "ana"}, t0); err != nil {
			return err
		}
		if err := st.Requests.Create(ctx, adoptions.Request{ID: "r1", PetID: "luna", Status: adoptions.StatusDelivered}); err != nil {
			return err
		}
		if err := st.Notifications.Create(ctx, notifications.New("ana", "luna", "hola", t0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Pets().GetByID(ctx, "luna")
	require.NoError(t, err)
	assert.Equal(t, pets.ShelterOwner{UserID: "refugio"}, p.Owner)

	_, err = s.Adoptions().GetByID(ctx, "r1")
	assert.ErrorIs(t, err, adoptions.ErrNotFound)

	ns, err := s.Notifications().ListByUser(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestRunInTxCommits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPet(t, s, "luna", pets.ShelterOwner{UserID: "refugio"})

	err := s.AdoptionsTx().RunInTx(ctx, func(st adoptions.Stores) error {
		_, err := pets.Reassign(ctx, st.Pets, "luna", pets.PersonOwner{UserID: "ana"}, t0)
		return err
	})
	require.NoError(t, err)

	n, err := s.Pets().CountByOwner(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunInTxHonoursCancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.TransfersTx().RunInTx(ctx, func(_ transfers.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestUsersEmailUniqueCaseInsensitive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, users.User{ID: "a", Email: "ana@example.com"}))

	err := s.Users().Create(ctx, users.User{ID: "b", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, users.ErrEmailTaken)

	u, err := s.Users().GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "a", u.ID)
}

func TestPetListFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPet(t, s, "luna", pets.ShelterOwner{UserID: "refugio"})
	seedPet(t, s, "michi", pets.PersonOwner{UserID: "ana"})

	adoptable, err := s.Pets().List(ctx, pets.ListFilter{OwnerKind: pets.OwnerKindShelter})
	require.NoError(t, err)
	require.Len(t, adoptable, 1)
	assert.Equal(t, "luna", adoptable[0].ID)

	mine, err := s.Pets().List(ctx, pets.ListFilter{OwnerID: "ana"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "michi", mine[0].ID)
}

func TestAdoptionListNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Adoptions()
	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "old", PetID: "p", NewOwnerID: "ana", Status: adoptions.StatusPending, RequestDate: t0}))
	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "new", PetID: "p", CurrentOwnerID: "ana", Status: adoptions.StatusRejected, RequestDate: t0.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, adoptions.Request{ID: "other", PetID: "q", NewOwnerID: "luis", Status: adoptions.StatusPending, RequestDate: t0}))

	got, err := repo.List(ctx, adoptions.ListFilter{UserID: "ana"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)

	pending, err := repo.List(ctx, adoptions.ListFilter{Statuses: []adoptions.Status{adoptions.StatusPending}})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
