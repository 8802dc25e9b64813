package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"petrack/internal/domain/users"
	"petrack/internal/ports/locks"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("pet not found")
	ErrForbidden     = errors.New("forbidden")
	ErrCannotOwnPets = errors.New("account type cannot own pets")
	ErrOpenRequests  = errors.New("pet has open adoption or transfer requests")
)

// Accounts resuelve la cuenta que figura como dueña.
type Accounts interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// OpenRequests cuenta las solicitudes todavía abiertas sobre una mascota.
// Lo implementan los workflows de adopción y de traslado.
type OpenRequests interface {
	CountOpenForPet(ctx context.Context, petID string) (int, error)
}

type Service struct {
	repo     Repository
	accounts Accounts
	locker   locks.Locker
	open     []OpenRequests
	now      func() time.Time
}

// NewService: locker puede ser nil (sin serializar el borrado).
func NewService(repo Repository, accounts Accounts, locker locks.Locker, open ...OpenRequests) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		locker:   locker,
		open:     open,
		now:      time.Now,
	}
}

type RegisterInput struct {
	// OwnerID vacío = el que llama.
	OwnerID string
	// OwnerKind opcional; si viene debe coincidir con el tipo de cuenta.
	OwnerKind string

	Name         string
	Species      string
	Breed        string
	Gender       string
	Weight       string
	Location     string
	HealthIssues string
	PetPicture   string
	DateOfBirth  time.Time
}

func (s *Service) Register(ctx context.Context, callerID string, in RegisterInput) (Pet, error) {
	callerID = strings.TrimSpace(callerID)
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		ownerID = callerID
	}
	if ownerID == "" {
		return Pet{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if ownerID != callerID {
		return Pet{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}
	if in.DateOfBirth.IsZero() {
		return Pet{}, fmt.Errorf("%w: date of birth is required", ErrInvalidInput)
	}

	owner, err := s.resolveOwner(ctx, ownerID)
	if err != nil {
		return Pet{}, err
	}
	if k := strings.TrimSpace(in.OwnerKind); k != "" && OwnerKind(strings.ToUpper(k)) != owner.Kind() {
		return Pet{}, fmt.Errorf("%w: owner kind does not match the account type", ErrInvalidInput)
	}

	now := s.now()
	p := Pet{
		ID:           uuid.NewString(),
		Owner:        owner,
		Name:         strings.TrimSpace(in.Name),
		Species:      strings.TrimSpace(in.Species),
		Breed:        strings.TrimSpace(in.Breed),
		Gender:       strings.TrimSpace(in.Gender),
		Weight:       strings.TrimSpace(in.Weight),
		Location:     strings.TrimSpace(in.Location),
		HealthIssues: strings.TrimSpace(in.HealthIssues),
		PetPicture:   strings.TrimSpace(in.PetPicture),
		DateOfBirth:  in.DateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) resolveOwner(ctx context.Context, userID string) (Owner, error) {
	u, err := s.accounts.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("%w: owner account not found", ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	return OwnerForAccount(u)
}

// UpdateInput: nil = no tocar. El dueño no se edita aquí; sólo cambia por adopción o traslado.
type UpdateInput struct {
	Name         *string
	Species      *string
	Breed        *string
	Gender       *string
	Weight       *string
	Location     *string
	HealthIssues *string
	PetPicture   *string
	DateOfBirth  *time.Time
}

func (s *Service) Update(ctx context.Context, callerID, petID string, in UpdateInput) (Pet, error) {
	p, err := s.ownedBy(ctx, callerID, petID)
	if err != nil {
		return Pet{}, err
	}

	required := []struct {
		dst *string
		src *string
	}{
		{&p.Name, in.Name},
		{&p.Species, in.Species},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return Pet{}, fmt.Errorf("%w: name and species cannot be empty", ErrInvalidInput)
		}
		*f.dst = v
	}

	optional := []struct {
		dst *string
		src *string
	}{
		{&p.Breed, in.Breed},
		{&p.Gender, in.Gender},
		{&p.Weight, in.Weight},
		{&p.Location, in.Location},
		{&p.HealthIssues, in.HealthIssues},
		{&p.PetPicture, in.PetPicture},
	}
	for _, f := range optional {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	if in.DateOfBirth != nil {
		if in.DateOfBirth.IsZero() {
			return Pet{}, fmt.Errorf("%w: date of birth cannot be empty", ErrInvalidInput)
		}
		p.DateOfBirth = *in.DateOfBirth
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Delete borra la mascota del dueño. Se niega mientras haya adopciones o
// traslados abiertos; corre bajo el lock de la mascota igual que los workflows.
func (s *Service) Delete(ctx context.Context, callerID, petID string) error {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return ErrInvalidInput
	}
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, locks.PetKey(petID))
		if err != nil {
			return err
		}
		defer unlock()
	}

	p, err := s.ownedBy(ctx, callerID, petID)
	if err != nil {
		return err
	}
	for _, o := range s.open {
		n, err := o.CountOpenForPet(ctx, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrOpenRequests
		}
	}
	return s.repo.Delete(ctx, p.ID)
}

func (s *Service) ownedBy(ctx context.Context, callerID, petID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.Owner.OwnerID() != strings.TrimSpace(callerID) {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx, ListFilter{})
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{OwnerID: ownerID})
}

// ListAdoptable devuelve las mascotas en manos de refugios.
func (s *Service) ListAdoptable(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx, ListFilter{OwnerKind: OwnerKindShelter})
}

// Reassign cambia el dueño usando el repo que recibe, normalmente el de
// una transacción abierta por el workflow.
func Reassign(ctx context.Context, repo Repository, petID string, to Owner, at time.Time) (Pet, error) {
	p, err := repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	p.Owner = to
	p.UpdatedAt = at
	if err := repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}
