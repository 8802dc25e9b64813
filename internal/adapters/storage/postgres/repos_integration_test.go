//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"petrack/internal/adapters/locks/local"
	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
	"petrack/internal/platform/logger"
)

type RepoSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	ctx       context.Context
	now       time.Time
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupSuite() {
	s.ctx = context.Background()
	c, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("petrack"),
		tcpostgres.WithUsername("petrack"),
		tcpostgres.WithPassword("petrack"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = c

	dsn, err := c.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = Connect(dsn, logger.Nop())
	s.Require().NoError(err)
	s.Require().NoError(Migrate(s.ctx, s.db))
}

func (s *RepoSuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepoSuite) SetupTest() {
	s.now = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.db.Exec(
		"TRUNCATE users, pets, adoption_requests, transfer_requests, notifications",
	).Error)
}

func (s *RepoSuite) seedUser(id string, t users.Type) users.User {
	u := users.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		Type:         t,
		Profile:      users.Profile{Name: id, CompleteName: id},
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.Require().NoError(NewUsersRepo(s.db).Create(s.ctx, u))
	return u
}

func (s *RepoSuite) seedPet(id string, owner pets.Owner) pets.Pet {
	p := pets.Pet{
		ID:          id,
		Owner:       owner,
		Name:        id,
		Species:     "dog",
		DateOfBirth: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.Require().NoError(NewPetsRepo(s.db).Create(s.ctx, p))
	return p
}

func (s *RepoSuite) TestUsersEmailIsUnique() {
	repo := NewUsersRepo(s.db)
	s.seedUser("ana", users.TypeOwner)

	err := repo.Create(s.ctx, users.User{
		ID: "otra", Email: "ana@example.com", PasswordHash: "x", Type: users.TypeOwner,
		CreatedAt: s.now, UpdatedAt: s.now,
	})
	s.ErrorIs(err, users.ErrEmailTaken)

	got, err := repo.GetByEmail(s.ctx, "ana@example.com")
	s.Require().NoError(err)
	s.Equal("ana", got.ID)

	_, err = repo.GetByID(s.ctx, "nadie")
	s.ErrorIs(err, users.ErrNotFound)
}

func (s *RepoSuite) TestUsersUpdateAndDelete() {
	repo := NewUsersRepo(s.db)
	u := s.seedUser("ana", users.TypeOwner)

	u.PhoneNumber = "555-0101"
	u.Profile.Address = ""
	s.Require().NoError(repo.Update(s.ctx, u))

	got, err := repo.GetByID(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal("555-0101", got.PhoneNumber)

	s.Require().NoError(repo.Delete(s.ctx, "ana"))
	s.ErrorIs(repo.Delete(s.ctx, "ana"), users.ErrNotFound)
	s.ErrorIs(repo.Update(s.ctx, u), users.ErrNotFound)
}

func (s *RepoSuite) TestPetsKeepOwnerVariant() {
	repo := NewPetsRepo(s.db)
	s.seedPet("luna", pets.ShelterOwner{UserID: "refugio"})
	s.seedPet("michi", pets.PersonOwner{UserID: "ana"})

	got, err := repo.GetByID(s.ctx, "luna")
	s.Require().NoError(err)
	s.Equal(pets.ShelterOwner{UserID: "refugio"}, got.Owner)

	adoptable, err := repo.List(s.ctx, pets.ListFilter{OwnerKind: pets.OwnerKindShelter})
	s.Require().NoError(err)
	s.Len(adoptable, 1)

	n, err := repo.CountByOwner(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(1, n)

	s.ErrorIs(repo.Delete(s.ctx, "nadie"), pets.ErrNotFound)
}

func (s *RepoSuite) TestOnlyOneAcceptedAdoptionPerPet() {
	repo := NewAdoptionsRepo(s.db)
	for _, id := range []string{"r1", "r2"} {
		s.Require().NoError(repo.Create(s.ctx, adoptions.Request{
			ID: id, PetID: "luna", CurrentOwnerID: "refugio", NewOwnerID: "u-" + id,
			Status: adoptions.StatusPending, RequestDate: s.now, UpdatedAt: s.now,
		}))
	}

	r1, err := repo.GetByID(s.ctx, "r1")
	s.Require().NoError(err)
	r1.Status = adoptions.StatusAccepted
	s.Require().NoError(repo.Update(s.ctx, r1))

	r2, err := repo.GetByID(s.ctx, "r2")
	s.Require().NoError(err)
	r2.Status = adoptions.StatusAccepted
	s.ErrorIs(repo.Update(s.ctx, r2), adoptions.ErrPetTaken)

	accepted, err := repo.List(s.ctx, adoptions.ListFilter{
		UserID: "refugio", Statuses: []adoptions.Status{adoptions.StatusAccepted},
	})
	s.Require().NoError(err)
	s.Require().Len(accepted, 1)
	s.Equal("r1", accepted[0].ID)
}

func (s *RepoSuite) TestOnlyOnePendingTransferPerPet() {
	repo := NewTransfersRepo(s.db)
	s.Require().NoError(repo.Create(s.ctx, transfers.Request{
		ID: "t1", PetID: "michi", CurrentOwnerID: "ana", NewOwnerID: "luis",
		Status: transfers.StatusPending, RequestDate: s.now,
	}))
	err := repo.Create(s.ctx, transfers.Request{
		ID: "t2", PetID: "michi", CurrentOwnerID: "ana", NewOwnerID: "sofia",
		Status: transfers.StatusPending, RequestDate: s.now,
	})
	s.ErrorIs(err, transfers.ErrPendingExists)
}

func (s *RepoSuite) TestNotificationsNewestFirst() {
	repo := NewNotificationsRepo(s.db)
	older := notifications.New("ana", "luna", "first", s.now.Add(-time.Minute))
	newer := notifications.New("ana", "", "second", s.now)
	s.Require().NoError(repo.Create(s.ctx, older))
	s.Require().NoError(repo.Create(s.ctx, newer))

	older.IsRead = true
	s.Require().NoError(repo.Update(s.ctx, older))

	got, err := repo.ListByUser(s.ctx, "ana")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newer.ID, got[0].ID)

	unread, err := repo.CountUnread(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(1, unread)
}

func (s *RepoSuite) TestTxRollsBackOnError() {
	s.seedPet("luna", pets.ShelterOwner{UserID: "refugio"})
	tx := NewAdoptionsTx(s.db)

	err := tx.RunInTx(s.ctx, func(st adoptions.Stores) error {
		p, err := st.Pets.GetByID(s.ctx, "luna")
		if err != nil {
			return err
		}
		p.Owner = pets.PersonOwner{UserID: "ana"}
		if err := st.Pets.Update(s.ctx, p); err != nil {
			return err
		}
		return adoptions.ErrBadState
	})
	s.ErrorIs(err, adoptions.ErrBadState)

	got, err := NewPetsRepo(s.db).GetByID(s.ctx, "luna")
	s.Require().NoError(err)
	s.Equal(pets.ShelterOwner{UserID: "refugio"}, got.Owner)
}

func (s *RepoSuite) TestAdoptionWorkflowOnPostgres() {
	s.seedUser("refugio", users.TypeShelter)
	s.seedUser("ana", users.TypeOwner)
	s.seedUser("luis", users.TypeOwner)
	s.seedPet("luna", pets.ShelterOwner{UserID: "refugio"})

	svc := adoptions.NewService(adoptions.Deps{
		Requests: NewAdoptionsRepo(s.db),
		Tx:       NewAdoptionsTx(s.db),
		Accounts: NewUsersRepo(s.db),
		Locker:   local.New(),
	})

	ana, err := svc.Request(s.ctx, "luna", "ana")
	s.Require().NoError(err)
	luis, err := svc.Request(s.ctx, "luna", "luis")
	s.Require().NoError(err)

	_, err = svc.Accept(s.ctx, ana.ID, "refugio")
	s.Require().NoError(err)
	_, err = svc.ConfirmDelivery(s.ctx, ana.ID, "refugio")
	s.Require().NoError(err)

	pet, err := NewPetsRepo(s.db).GetByID(s.ctx, "luna")
	s.Require().NoError(err)
	s.Equal(pets.PersonOwner{UserID: "ana"}, pet.Owner)

	lost, err := NewAdoptionsRepo(s.db).GetByID(s.ctx, luis.ID)
	s.Require().NoError(err)
	s.Equal(adoptions.StatusRejected, lost.Status)

	unread, err := NewNotificationsRepo(s.db).CountUnread(s.ctx, "luis")
	s.Require().NoError(err)
	s.Positive(unread)
}
