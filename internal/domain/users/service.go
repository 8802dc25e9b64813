package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrOwnsPets           = errors.New("account still owns pets")
)

// TokenIssuer firma el token de sesión que devuelve Login.
type TokenIssuer interface {
	Issue(u User) (token string, expiresAt time.Time, err error)
}

// PetHoldings permite saber si una cuenta todavía tiene mascotas.
type PetHoldings interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

type Service struct {
	repo     Repository
	tokens   TokenIssuer
	holdings PetHoldings
	now      func() time.Time
	hashCost int
}

func NewService(repo Repository, tokens TokenIssuer, holdings PetHoldings) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		holdings: holdings,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Email          string
	Password       string
	Type           Type
	ProfilePicture string
	PhoneNumber    string
	Profile        Profile
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	t, ok := ParseType(string(in.Type))
	if !ok {
		return User{}, fmt.Errorf("%w: user type must be O, S or V", ErrInvalidInput)
	}
	profile, err := normalizeProfile(t, in.Profile)
	if err != nil {
		return User{}, err
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		Type:           t,
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		Profile:        profile,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := checkPassword(u.PasswordHash, password); err != nil {
		return LoginResult{}, err
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if err := checkPassword(u.PasswordHash, current); err != nil {
		return err
	}

	hash, err := hashPassword(next, s.hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Email          *string
	PhoneNumber    *string
	ProfilePicture *string
	Profile        *Profile
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return User{}, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
		}
		if email != u.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != u.ID:
				return User{}, ErrEmailTaken
			case err != nil && !errors.Is(err, ErrNotFound):
				return User{}, err
			}
			u.Email = email
		}
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.ProfilePicture != nil {
		u.ProfilePicture = strings.TrimSpace(*in.ProfilePicture)
	}
	if in.Profile != nil {
		p, err := normalizeProfile(u.Type, *in.Profile)
		if err != nil {
			return User{}, err
		}
		u.Profile = p
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if s.holdings != nil {
		n, err := s.holdings.CountByOwner(ctx, u.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrOwnsPets
		}
	}
	return s.repo.Delete(ctx, u.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) ListByType(ctx context.Context, t Type) ([]User, error) {
	return s.repo.ListByType(ctx, t)
}

// VerifyPassword confirma la contraseña de una cuenta sin emitir token.
func (s *Service) VerifyPassword(ctx context.Context, userID, password string) error {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	return checkPassword(u.PasswordHash, password)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeProfile limpia los campos que no aplican al tipo y exige el nombre.
func normalizeProfile(t Type, p Profile) (Profile, error) {
	if t == TypeOwner {
		name := strings.TrimSpace(p.CompleteName)
		if name == "" {
			return Profile{}, fmt.Errorf("%w: complete name is required", ErrInvalidInput)
		}
		return Profile{CompleteName: name}, nil
	}

	out := Profile{
		Name:         strings.TrimSpace(p.Name),
		Address:      strings.TrimSpace(p.Address),
		CoverPicture: strings.TrimSpace(p.CoverPicture),
		WorkingDays:  strings.TrimSpace(p.WorkingDays),
		WorkingHours: strings.TrimSpace(p.WorkingHours),
	}
	if t == TypeVeterinarian {
		out.ClinicName = strings.TrimSpace(p.ClinicName)
	}
	if out.Name == "" {
		return Profile{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return out, nil
}
