package transfers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/adapters/locks/local"
	"petrack/internal/adapters/storage/memory"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
)

// testAccounts evita bcrypt en tests: las contraseñas se comparan en claro.
type testAccounts struct {
	users.Repository
	passwords map[string]string
}

func (a testAccounts) VerifyPassword(_ context.Context, userID, password string) error {
	if a.passwords[userID] != password {
		return users.ErrInvalidCredentials
	}
	return nil
}

type countingDispatcher struct{ n int }

func (d *countingDispatcher) Dispatch(_ context.Context, ns []notifications.Notification) {
	d.n += len(ns)
}

type fixture struct {
	ctx        context.Context
	store      *memory.Store
	dispatcher *countingDispatcher
	svc        *transfers.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for _, u := range []users.User{
		{ID: "ana", Email: "ana@example.com", Type: users.TypeOwner},
		{ID: "luis", Email: "luis@example.com", Type: users.TypeOwner},
		{ID: "refugio", Email: "refugio@example.com", Type: users.TypeShelter},
		{ID: "vet", Email: "vet@example.com", Type: users.TypeVeterinarian},
	} {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	require.NoError(t, store.Pets().Create(ctx, pets.Pet{
		ID: "michi", Name: "Michi", Species: "cat", Owner: pets.PersonOwner{UserID: "ana"},
	}))

	d := &countingDispatcher{}
	svc := transfers.NewService(transfers.Deps{
		Requests: store.Transfers(),
		Pets:     store.Pets(),
		Tx:       store.TransfersTx(),
		Accounts: testAccounts{
			Repository: store.Users(),
			passwords:  map[string]string{"ana": "ana-secret", "luis": "luis-secret"},
		},
		Locker:     local.New(),
		Dispatcher: d,
	})
	return fixture{ctx: ctx, store: store, dispatcher: d, svc: svc}
}

func (f fixture) request(t *testing.T, email string) transfers.Request {
	t.Helper()
	req, err := f.svc.Request(f.ctx, transfers.RequestInput{
		PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: email, Password: "ana-secret",
	})
	require.NoError(t, err)
	return req
}

func TestRequestTransferNotifiesTarget(t *testing.T) {
	f := newFixture(t)

	req := f.request(t, "luis@example.com")

	assert.Equal(t, transfers.StatusPending, req.Status)
	assert.Equal(t, "luis", req.NewOwnerID)

	ns, err := f.store.Notifications().ListByUser(f.ctx, "luis")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Message, "ana@example.com")
	assert.Contains(t, ns[0].Message, "Michi")
	assert.Equal(t, 1, f.dispatcher.n)
}

func TestRequestTransferRejections(t *testing.T) {
	cases := []struct {
		name string
		in   transfers.RequestInput
		want error
	}{
		{"unknown pet", transfers.RequestInput{PetID: "ghost", CurrentOwnerID: "ana", NewOwnerEmail: "luis@example.com", Password: "ana-secret"}, pets.ErrNotFound},
		{"not the owner", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "luis", NewOwnerEmail: "ana@example.com", Password: "luis-secret"}, transfers.ErrNotOwner},
		{"bad password", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "luis@example.com", Password: "nope"}, transfers.ErrInvalidCredentials},
		{"unknown target", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "ghost@example.com", Password: "ana-secret"}, transfers.ErrTargetNotFound},
		{"vet target", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "vet@example.com", Password: "ana-secret"}, pets.ErrCannotOwnPets},
		{"self", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "ana@example.com", Password: "ana-secret"}, transfers.ErrSelfTransfer},
		{"missing password", transfers.RequestInput{PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "luis@example.com"}, transfers.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Request(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOnlyOnePendingTransferPerPet(t *testing.T) {
	f := newFixture(t)
	f.request(t, "luis@example.com")

	_, err := f.svc.Request(f.ctx, transfers.RequestInput{
		PetID: "michi", CurrentOwnerID: "ana", NewOwnerEmail: "refugio@example.com", Password: "ana-secret",
	})
	assert.ErrorIs(t, err, transfers.ErrPendingExists)
}

func TestAcceptTransferMovesWholeOwner(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "refugio@example.com")

	got, err := f.svc.Respond(f.ctx, req.ID, "refugio", true)
	require.NoError(t, err)
	assert.Equal(t, transfers.StatusAccepted, got.Status)
	require.NotNil(t, got.RespondedAt)

	p, err := f.store.Pets().GetByID(f.ctx, "michi")
	require.NoError(t, err)
	assert.Equal(t, pets.ShelterOwner{UserID: "refugio"}, p.Owner, "variant follows the receiving account")

	ns, err := f.store.Notifications().ListByUser(f.ctx, "ana")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Message, "accepted")
}

func TestRejectTransferKeepsOwner(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "luis@example.com")

	got, err := f.svc.Respond(f.ctx, req.ID, "luis", false)
	require.NoError(t, err)
	assert.Equal(t, transfers.StatusRejected, got.Status)

	p, err := f.store.Pets().GetByID(f.ctx, "michi")
	require.NoError(t, err)
	assert.Equal(t, pets.PersonOwner{UserID: "ana"}, p.Owner)

	ns, err := f.store.Notifications().ListByUser(f.ctx, "ana")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Message, "rejected")

	// Ya respondido: otro traslado puede pedirse.
	f.request(t, "refugio@example.com")
}

func TestRespondGuards(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "luis@example.com")

	_, err := f.svc.Respond(f.ctx, "missing", "luis", true)
	assert.ErrorIs(t, err, transfers.ErrNotFound)

	_, err = f.svc.Respond(f.ctx, req.ID, "ana", true)
	assert.ErrorIs(t, err, transfers.ErrForbidden)

	_, err = f.svc.Respond(f.ctx, req.ID, "luis", true)
	require.NoError(t, err)

	_, err = f.svc.Respond(f.ctx, req.ID, "luis", false)
	assert.ErrorIs(t, err, transfers.ErrBadState)

	list, err := f.svc.List(f.ctx, transfers.ListFilter{UserID: "ana"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
