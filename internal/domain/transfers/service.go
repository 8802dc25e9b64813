package transfers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/users"
	"petrack/internal/platform/logger"
	"petrack/internal/platform/metrics"
	"petrack/internal/ports/locks"
)

const workflow = "transfer"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("transfer request not found")
	ErrForbidden          = errors.New("forbidden")
	ErrBadState           = errors.New("transfer request has already been answered")
	ErrNotOwner           = errors.New("requester is not the current owner of the pet")
	ErrPendingExists      = errors.New("a pending transfer already exists for this pet")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrTargetNotFound     = errors.New("no account registered with that email")
	ErrSelfTransfer       = errors.New("cannot transfer a pet to yourself")
	ErrOwnerChanged       = errors.New("pet owner changed since the transfer was requested")
)

// Accounts es lo que el traslado necesita de las cuentas.
type Accounts interface {
	GetByID(ctx context.Context, id string) (users.User, error)
	GetByEmail(ctx context.Context, email string) (users.User, error)
	VerifyPassword(ctx context.Context, userID, password string) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ns []notifications.Notification)
}

type Deps struct {
	Requests   Repository
	Pets       pets.Repository
	Tx         Tx
	Accounts   Accounts
	Locker     locks.Locker
	Dispatcher Dispatcher
	Logger     logger.Logger
}

type Service struct {
	repo       Repository
	pets       pets.Repository
	tx         Tx
	accounts   Accounts
	locker     locks.Locker
	dispatcher Dispatcher
	log        logger.Logger
	now        func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:       d.Requests,
		pets:       d.Pets,
		tx:         d.Tx,
		accounts:   d.Accounts,
		locker:     d.Locker,
		dispatcher: d.Dispatcher,
		log:        log.With(logger.Fields{"component": "transfers"}),
		now:        time.Now,
	}
}

type RequestInput struct {
	PetID          string
	CurrentOwnerID string
	NewOwnerEmail  string
	Password       string
}

// Request abre un traslado. El dueño confirma con su contraseña y el
// destinatario recibe una notificación.
func (s *Service) Request(ctx context.Context, in RequestInput) (Request, error) {
	petID := strings.TrimSpace(in.PetID)
	ownerID := strings.TrimSpace(in.CurrentOwnerID)
	email := strings.TrimSpace(in.NewOwnerEmail)
	if petID == "" || ownerID == "" || email == "" || in.Password == "" {
		return Request{}, ErrInvalidInput
	}

	unlock, err := s.locker.Lock(ctx, locks.PetKey(petID))
	if err != nil {
		return Request{}, err
	}
	defer unlock()

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return Request{}, err
	}
	if p.Owner.OwnerID() != ownerID {
		return Request{}, s.refuse("not_owner", ErrNotOwner)
	}
	pending, err := s.repo.List(ctx, ListFilter{PetID: petID, Status: StatusPending})
	if err != nil {
		return Request{}, err
	}
	if len(pending) > 0 {
		return Request{}, s.refuse("duplicate", ErrPendingExists)
	}

	if err := s.accounts.VerifyPassword(ctx, ownerID, in.Password); err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return Request{}, s.refuse("bad_password", ErrInvalidCredentials)
		}
		return Request{}, err
	}
	owner, err := s.accounts.GetByID(ctx, ownerID)
	if err != nil {
		return Request{}, err
	}
	target, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return Request{}, ErrTargetNotFound
	}
	if err != nil {
		return Request{}, err
	}
	if target.ID == ownerID {
		return Request{}, ErrSelfTransfer
	}
	if !target.Type.CanOwnPets() {
		return Request{}, pets.ErrCannotOwnPets
	}

	var created Request
	var notes []notifications.Notification
	err = s.tx.RunInTx(ctx, func(st Stores) error {
		// Bajo lock y ya dentro de la transacción se revalida lo leído arriba.
		current, err := st.Pets.GetByID(ctx, petID)
		if err != nil {
			return err
		}
		if current.Owner.OwnerID() != ownerID {
			return ErrNotOwner
		}
		pending, err := st.Requests.List(ctx, ListFilter{PetID: petID, Status: StatusPending})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return ErrPendingExists
		}

		now := s.now()
		created = Request{
			ID:             uuid.NewString(),
			PetID:          petID,
			CurrentOwnerID: ownerID,
			NewOwnerID:     target.ID,
			Status:         StatusPending,
			RequestDate:    now,
		}
		if err := st.Requests.Create(ctx, created); err != nil {
			return err
		}

		msg := fmt.Sprintf("You have received a transfer request from %s for the pet %s.", owner.Email, current.Name)
		n := notifications.New(target.ID, petID, msg, now)
		if err := st.Notifications.Create(ctx, n); err != nil {
			return err
		}
		notes = []notifications.Notification{n}
		return nil
	})
	if err != nil {
		return Request{}, err
	}

	s.committed(ctx, created, notes)
	return created, nil
}

// Respond: sólo el destinatario, sólo una vez. Si acepta, la mascota pasa a
// su nombre con la variante de dueño que corresponde a su cuenta.
func (s *Service) Respond(ctx context.Context, requestID, actorID string, accept bool) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	actorID = strings.TrimSpace(actorID)
	if requestID == "" || actorID == "" {
		return Request{}, ErrInvalidInput
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.NewOwnerID != actorID {
		return Request{}, s.refuse("forbidden", ErrForbidden)
	}

	var newOwner pets.Owner
	if accept {
		target, err := s.accounts.GetByID(ctx, req.NewOwnerID)
		if err != nil {
			return Request{}, err
		}
		if newOwner, err = pets.OwnerForAccount(target); err != nil {
			return Request{}, err
		}
	}

	unlock, err := s.locker.Lock(ctx, locks.PetKey(req.PetID))
	if err != nil {
		return Request{}, err
	}
	defer unlock()

	var out Request
	var notes []notifications.Notification
	err = s.tx.RunInTx(ctx, func(st Stores) error {
		req, err := st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrBadState
		}

		now := s.now()
		p, err := st.Pets.GetByID(ctx, req.PetID)
		if err != nil {
			return err
		}

		verb := "rejected"
		req.Status = StatusRejected
		if accept {
			if p.Owner.OwnerID() != req.CurrentOwnerID {
				return ErrOwnerChanged
			}
			if _, err := pets.Reassign(ctx, st.Pets, p.ID, newOwner, now); err != nil {
				return err
			}
			verb = "accepted"
			req.Status = StatusAccepted
		}
		req.RespondedAt = &now
		if err := st.Requests.Update(ctx, req); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your transfer request for the pet %s has been %s.", p.Name, verb)
		n := notifications.New(req.CurrentOwnerID, p.ID, msg, now)
		if err := st.Notifications.Create(ctx, n); err != nil {
			return err
		}
		out = req
		notes = []notifications.Notification{n}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBadState) || errors.Is(err, ErrOwnerChanged) {
			metrics.ObserveRejection(workflow, "bad_state")
		}
		return Request{}, err
	}

	s.committed(ctx, out, notes)
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Request, error) {
	return s.repo.List(ctx, f)
}

// CountOpenForPet cuenta traslados Pending de la mascota.
func (s *Service) CountOpenForPet(ctx context.Context, petID string) (int, error) {
	pending, err := s.repo.List(ctx, ListFilter{PetID: petID, Status: StatusPending})
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (s *Service) refuse(reason string, err error) error {
	metrics.ObserveRejection(workflow, reason)
	return err
}

func (s *Service) committed(ctx context.Context, req Request, notes []notifications.Notification) {
	metrics.ObserveTransition(workflow, string(req.Status))
	s.log.Info("transfer request updated", logger.Fields{
		"request_id": req.ID,
		"pet_id":     req.PetID,
		"status":     string(req.Status),
	})
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notes)
	}
}
