package adoptions

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

const workflow = "adoption"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("adoption request not found")
	ErrForbidden        = errors.New("forbidden")
	ErrBadState         = errors.New("adoption request is not in a valid state for this operation")
	ErrNotAdoptable     = errors.New("pet is not owned by a shelter")
	ErrAlreadyRequested = errors.New("an active adoption request already exists for this pet and user")
	ErrAlreadyOwner     = errors.New("requester already owns the pet")
	ErrPetTaken         = errors.New("another adoption request for this pet is already accepted or delivered")
	ErrOwnerChanged     = errors.New("pet is no longer owned by the shelter that received the request")
)

// Accounts resuelve cuentas por id (adoptante).
type Accounts interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// Dispatcher publica notificaciones ya confirmadas.
type Dispatcher interface {
	Dispatch(ctx context.Context, ns []notifications.Notification)
}

type Deps struct {
	Requests   Repository
	Tx         Tx
	Accounts   Accounts
	Locker     locks.Locker
	Dispatcher Dispatcher
	Logger     logger.Logger
}

type Service struct {
	repo       Repository
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
		tx:         d.Tx,
		accounts:   d.Accounts,
		locker:     d.Locker,
		dispatcher: d.Dispatcher,
		log:        log.With(logger.Fields{"component": "adoptions"}),
		now:        time.Now,
	}
}

// Request crea una solicitud Pending para una mascota de refugio y avisa al refugio.
func (s *Service) Request(ctx context.Context, petID, requesterID string) (Request, error) {
	petID = strings.TrimSpace(petID)
	requesterID = strings.TrimSpace(requesterID)
	if petID == "" || requesterID == "" {
		return Request{}, ErrInvalidInput
	}

	adopter, err := s.accounts.GetByID(ctx, requesterID)
	if err != nil {
		return Request{}, accountErr(err)
	}
	if !adopter.Type.CanOwnPets() {
		return Request{}, pets.ErrCannotOwnPets
	}

	var created Request
	notes, err := s.mutate(ctx, petID, func(st Stores, now time.Time) ([]notifications.Notification, error) {
		p, err := st.Pets.GetByID(ctx, petID)
		if err != nil {
			return nil, err
		}
		if !pets.IsShelter(p.Owner) {
			return nil, ErrNotAdoptable
		}
		if p.Owner.OwnerID() == requesterID {
			return nil, ErrAlreadyOwner
		}

		active, err := st.Requests.List(ctx, ListFilter{PetID: petID, UserID: requesterID, Statuses: []Status{StatusPending, StatusAccepted}})
		if err != nil {
			return nil, err
		}
		for _, a := range active {
			if a.NewOwnerID == requesterID {
				return nil, ErrAlreadyRequested
			}
		}

		created = Request{
			ID:             uuid.NewString(),
			PetID:          p.ID,
			CurrentOwnerID: p.Owner.OwnerID(),
			NewOwnerID:     requesterID,
			Status:         StatusPending,
			RequestDate:    now,
			UpdatedAt:      now,
		}
		if err := st.Requests.Create(ctx, created); err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("New adoption request for %s from %s.", p.Name, adopter.DisplayName())
		return []notifications.Notification{notifications.New(created.CurrentOwnerID, p.ID, msg, now)}, nil
	})
	if err != nil {
		return Request{}, s.fail("request", err)
	}

	s.committed(ctx, created, notes)
	return created, nil
}

// Accept: sólo el refugio, sólo desde Pending y sólo si ninguna otra solicitud
// de la misma mascota está aceptada o entregada.
func (s *Service) Accept(ctx context.Context, requestID, actorID string) (Request, error) {
	return s.transition(ctx, requestID, actorID, "accept", func(st Stores, req Request, now time.Time) (Request, []notifications.Notification, error) {
		if req.CurrentOwnerID != actorID {
			return req, nil, ErrForbidden
		}
		if req.Status != StatusPending {
			return req, nil, ErrBadState
		}

		p, err := shelterPet(ctx, st, req)
		if err != nil {
			return req, nil, err
		}

		taken, err := st.Requests.List(ctx, ListFilter{PetID: req.PetID, Statuses: []Status{StatusAccepted, StatusDelivered}})
		if err != nil {
			return req, nil, err
		}
		for _, o := range taken {
			if o.ID != req.ID {
				return req, nil, ErrPetTaken
			}
		}

		req.Status = StatusAccepted
		req.UpdatedAt = now
		if err := st.Requests.Update(ctx, req); err != nil {
			return req, nil, err
		}

		msg := fmt.Sprintf("Your adoption request for %s has been accepted.", p.Name)
		return req, []notifications.Notification{notifications.New(req.NewOwnerID, p.ID, msg, now)}, nil
	})
}

// ConfirmDelivery cierra la adopción: entrega, cambio de dueño y rechazo de
// las demás solicitudes no entregadas, todo en una transacción.
func (s *Service) ConfirmDelivery(ctx context.Context, requestID, actorID string) (Request, error) {
	current, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return Request{}, err
	}
	// La cuenta se resuelve antes de abrir la transacción.
	adopter, err := s.accounts.GetByID(ctx, current.NewOwnerID)
	if err != nil {
		return Request{}, accountErr(err)
	}
	newOwner, err := pets.OwnerForAccount(adopter)
	if err != nil {
		return Request{}, err
	}

	return s.transition(ctx, requestID, actorID, "confirm_delivery", func(st Stores, req Request, now time.Time) (Request, []notifications.Notification, error) {
		if req.CurrentOwnerID != actorID {
			return req, nil, ErrForbidden
		}
		if req.Status != StatusAccepted {
			return req, nil, ErrBadState
		}
		if req.NewOwnerID != newOwner.OwnerID() {
			return req, nil, ErrBadState
		}

		if _, err := shelterPet(ctx, st, req); err != nil {
			return req, nil, err
		}
		p, err := pets.Reassign(ctx, st.Pets, req.PetID, newOwner, now)
		if err != nil {
			return req, nil, err
		}

		req.Status = StatusDelivered
		req.IsDelivered = true
		req.DeliveryDate = &now
		req.UpdatedAt = now
		if err := st.Requests.Update(ctx, req); err != nil {
			return req, nil, err
		}

		notes := []notifications.Notification{
			notifications.New(req.NewOwnerID, p.ID, fmt.Sprintf("The adoption of %s has been completed. Welcome home!", p.Name), now),
		}

		// Toda otra solicitud no entregada queda Rejected, también las canceladas.
		siblings, err := st.Requests.List(ctx, ListFilter{PetID: req.PetID, Statuses: []Status{StatusPending, StatusAccepted, StatusCancelled}})
		if err != nil {
			return req, nil, err
		}
		for _, sib := range siblings {
			if sib.ID == req.ID {
				continue
			}
			sib.Status = StatusRejected
			sib.UpdatedAt = now
			if err := st.Requests.Update(ctx, sib); err != nil {
				return req, nil, err
			}
			notes = append(notes, rejectedNotice(sib, p, now))
		}
		return req, notes, nil
	})
}

// Reject: el refugio rechaza una solicitud activa y se avisa al solicitante.
func (s *Service) Reject(ctx context.Context, requestID, actorID string) (Request, error) {
	return s.transition(ctx, requestID, actorID, "reject", func(st Stores, req Request, now time.Time) (Request, []notifications.Notification, error) {
		if req.CurrentOwnerID != actorID {
			return req, nil, ErrForbidden
		}
		if !req.Status.Active() {
			return req, nil, ErrBadState
		}

		p, err := shelterPet(ctx, st, req)
		if err != nil {
			return req, nil, err
		}

		req.Status = StatusRejected
		req.UpdatedAt = now
		if err := st.Requests.Update(ctx, req); err != nil {
			return req, nil, err
		}
		return req, []notifications.Notification{rejectedNotice(req, p, now)}, nil
	})
}

// Cancel: el solicitante retira su solicitud. No notifica a nadie.
func (s *Service) Cancel(ctx context.Context, requestID, actorID string) (Request, error) {
	return s.transition(ctx, requestID, actorID, "cancel", func(st Stores, req Request, now time.Time) (Request, []notifications.Notification, error) {
		if req.NewOwnerID != actorID {
			return req, nil, ErrForbidden
		}
		if !req.Status.Active() {
			return req, nil, ErrBadState
		}

		req.Status = StatusCancelled
		req.UpdatedAt = now
		if err := st.Requests.Update(ctx, req); err != nil {
			return req, nil, err
		}
		return req, nil, nil
	})
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

// CountOpenForPet cuenta solicitudes Pending o Accepted de la mascota.
func (s *Service) CountOpenForPet(ctx context.Context, petID string) (int, error) {
	open, err := s.repo.List(ctx, ListFilter{PetID: petID, Statuses: []Status{StatusPending, StatusAccepted}})
	if err != nil {
		return 0, err
	}
	return len(open), nil
}

type stepFunc func(st Stores, req Request, now time.Time) (Request, []notifications.Notification, error)

// transition carga la solicitud, toma el lock de la mascota y aplica step
// dentro de la transacción, releyendo la solicitud ya bajo el lock.
func (s *Service) transition(ctx context.Context, requestID, actorID, op string, step stepFunc) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	actorID = strings.TrimSpace(actorID)
	if requestID == "" || actorID == "" {
		return Request{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}

	var out Request
	notes, err := s.mutate(ctx, current.PetID, func(st Stores, now time.Time) ([]notifications.Notification, error) {
		req, err := st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		updated, notes, err := step(st, req, now)
		if err != nil {
			return nil, err
		}
		out = updated
		return notes, nil
	})
	if err != nil {
		return Request{}, s.fail(op, err)
	}

	s.committed(ctx, out, notes)
	return out, nil
}

// mutate serializa por mascota y persiste las notificaciones en la misma transacción.
func (s *Service) mutate(ctx context.Context, petID string, fn func(st Stores, now time.Time) ([]notifications.Notification, error)) ([]notifications.Notification, error) {
	unlock, err := s.locker.Lock(ctx, locks.PetKey(petID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var notes []notifications.Notification
	err = s.tx.RunInTx(ctx, func(st Stores) error {
		out, err := fn(st, s.now())
		if err != nil {
			return err
		}
		for _, n := range out {
			if err := st.Notifications.Create(ctx, n); err != nil {
				return err
			}
		}
		notes = out
		return nil
	})
	return notes, err
}

func (s *Service) committed(ctx context.Context, req Request, notes []notifications.Notification) {
	metrics.ObserveTransition(workflow, string(req.Status))
	s.log.Info("adoption request updated", logger.Fields{
		"request_id": req.ID,
		"pet_id":     req.PetID,
		"status":     string(req.Status),
		"notified":   len(notes),
	})
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notes)
	}
}

func (s *Service) fail(op string, err error) error {
	if reason := businessReason(err); reason != "" {
		metrics.ObserveRejection(workflow, reason)
		s.log.Debug("adoption operation refused", logger.Fields{"op": op, "reason": reason})
	}
	return err
}

func businessReason(err error) string {
	switch {
	case errors.Is(err, ErrBadState):
		return "bad_state"
	case errors.Is(err, ErrPetTaken):
		return "pet_taken"
	case errors.Is(err, ErrOwnerChanged):
		return "owner_changed"
	case errors.Is(err, ErrAlreadyRequested):
		return "duplicate"
	case errors.Is(err, ErrNotAdoptable):
		return "not_adoptable"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return ""
	}
}

// shelterPet lee la mascota y exige que siga en manos del refugio que recibió la solicitud.
func shelterPet(ctx context.Context, st Stores, req Request) (pets.Pet, error) {
	p, err := st.Pets.GetByID(ctx, req.PetID)
	if err != nil {
		return pets.Pet{}, err
	}
	if !pets.IsShelter(p.Owner) || p.Owner.OwnerID() != req.CurrentOwnerID {
		return pets.Pet{}, ErrOwnerChanged
	}
	return p, nil
}

func accountErr(err error) error {
	if errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("%w: account not found", ErrInvalidInput)
	}
	return err
}

func rejectedNotice(req Request, p pets.Pet, now time.Time) notifications.Notification {
	msg := fmt.Sprintf("Your adoption request for %s has been rejected.", p.Name)
	return notifications.New(req.NewOwnerID, p.ID, msg, now)
}
