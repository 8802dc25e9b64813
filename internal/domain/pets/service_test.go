package pets

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/domain/users"
	"petrack/internal/ports/locks"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[string]Pet
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[string]Pet{}} }

func (f *fakeRepo) Create(_ context.Context, p Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.ID] = p
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return ErrNotFound
	}
	f.items[p.ID] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) List(_ context.Context, flt ListFilter) ([]Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Pet{}
	for _, p := range f.items {
		if flt.OwnerID != "" && p.Owner.OwnerID() != flt.OwnerID {
			continue
		}
		if flt.OwnerKind != "" && p.Owner.Kind() != flt.OwnerKind {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	items, _ := f.List(ctx, ListFilter{OwnerID: ownerID})
	return len(items), nil
}

type fakeAccounts map[string]users.User

func (f fakeAccounts) GetByID(_ context.Context, id string) (users.User, error) {
	u, ok := f[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

var accounts = fakeAccounts{
	"ana":     {ID: "ana", Type: users.TypeOwner},
	"refugio": {ID: "refugio", Type: users.TypeShelter},
	"vet":     {ID: "vet", Type: users.TypeVeterinarian},
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, accounts, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

var dob = time.Date(2022, 5, 10, 0, 0, 0, 0, time.UTC)

func TestRegisterDerivesOwnerFromAccount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Register(ctx, "refugio", RegisterInput{Name: " Luna ", Species: "dog", DateOfBirth: dob})
	require.NoError(t, err)
	assert.Equal(t, ShelterOwner{UserID: "refugio"}, p.Owner)
	assert.Equal(t, "Luna", p.Name)

	p, err = svc.Register(ctx, "ana", RegisterInput{OwnerKind: "o", Name: "Michi", Species: "cat", DateOfBirth: dob})
	require.NoError(t, err)
	assert.Equal(t, PersonOwner{UserID: "ana"}, p.Owner)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		caller string
		in     RegisterInput
		want   error
	}{
		{"other owner", "ana", RegisterInput{OwnerID: "refugio", Name: "x", Species: "dog", DateOfBirth: dob}, ErrForbidden},
		{"missing name", "ana", RegisterInput{Species: "dog", DateOfBirth: dob}, ErrInvalidInput},
		{"missing birth date", "ana", RegisterInput{Name: "x", Species: "dog"}, ErrInvalidInput},
		{"kind mismatch", "ana", RegisterInput{OwnerKind: "S", Name: "x", Species: "dog", DateOfBirth: dob}, ErrInvalidInput},
		{"vet account", "vet", RegisterInput{Name: "x", Species: "dog", DateOfBirth: dob}, ErrCannotOwnPets},
		{"unknown account", "ghost", RegisterInput{Name: "x", Species: "dog", DateOfBirth: dob}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.caller, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, err := svc.Register(ctx, "ana", RegisterInput{Name: "Michi", Species: "cat", DateOfBirth: dob})
	require.NoError(t, err)

	loc := "Quito"
	_, err = svc.Update(ctx, "refugio", p.ID, UpdateInput{Location: &loc})
	assert.ErrorIs(t, err, ErrForbidden)

	empty := " "
	_, err = svc.Update(ctx, "ana", p.ID, UpdateInput{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Update(ctx, "ana", p.ID, UpdateInput{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Quito", got.Location)
	assert.Equal(t, "Michi", got.Name)

	assert.ErrorIs(t, svc.Delete(ctx, "refugio", p.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "ana", p.ID))
	_, err = svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAdoptableOnlyShelterPets(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "ana", RegisterInput{Name: "Michi", Species: "cat", DateOfBirth: dob})
	require.NoError(t, err)
	_, err = svc.Register(ctx, "refugio", RegisterInput{Name: "Luna", Species: "dog", DateOfBirth: dob})
	require.NoError(t, err)

	adoptable, err := svc.ListAdoptable(ctx)
	require.NoError(t, err)
	require.Len(t, adoptable, 1)
	assert.Equal(t, "Luna", adoptable[0].Name)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReassignSwapsWholeOwner(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	p, err := svc.Register(ctx, "refugio", RegisterInput{Name: "Luna", Species: "dog", DateOfBirth: dob})
	require.NoError(t, err)

	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	got, err := Reassign(ctx, repo, p.ID, PersonOwner{UserID: "ana"}, at)
	require.NoError(t, err)
	assert.Equal(t, PersonOwner{UserID: "ana"}, got.Owner)
	assert.Equal(t, at, got.UpdatedAt)

	n, err := repo.CountByOwner(ctx, "refugio")
	require.NoError(t, err)
	assert.Zero(t, n)
}

type fixedOpen int

func (n fixedOpen) CountOpenForPet(context.Context, string) (int, error) { return int(n), nil }

type holdLocker struct{ held []string }

func (l *holdLocker) Lock(_ context.Context, key string) (func(), error) {
	l.held = append(l.held, key)
	return func() {}, nil
}

func TestDeleteRefusedWhileRequestsAreOpen(t *testing.T) {
	repo := newFakeRepo()
	locker := &holdLocker{}
	open := fixedOpen(1)
	svc := NewService(repo, accounts, locker, fixedOpen(0), &open)
	ctx := context.Background()

	p, err := svc.Register(ctx, "refugio", RegisterInput{Name: "Luna", Species: "dog", DateOfBirth: dob})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "refugio", p.ID), ErrOpenRequests)
	_, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{locks.PetKey(p.ID)}, locker.held)

	open = 0
	require.NoError(t, svc.Delete(ctx, "refugio", p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "refugio", " "), ErrInvalidInput)
}
