package users

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petrack/internal/middleware"
	"petrack/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/User", func(ur chi.Router) {
		ur.Post("/CreateAccount", createAccountHandler(svc))
		ur.Post("/Login", loginHandler(svc))
		ur.Put("/ChangePassword/{id}", changePasswordHandler(svc))
		ur.Get("/DetailsUser/{id}", detailsHandler(svc))
		ur.Get("/ListVeterinarians", listByTypeHandler(svc, TypeVeterinarian))
		ur.Get("/ListPetStoreShelters", listByTypeHandler(svc, TypeShelter))
		ur.Put("/EditUser/{id}", editHandler(svc))
		ur.Delete("/DeleteAccount/{id}", deleteHandler(svc))
	})
}

type profileDTO struct {
	CompleteName string `json:"complete_name,omitempty"`
	Name         string `json:"name,omitempty"`
	ClinicName   string `json:"clinic_name,omitempty"`
	Address      string `json:"address,omitempty"`
	CoverPicture string `json:"cover_picture,omitempty"`
	WorkingDays  string `json:"working_days,omitempty"`
	WorkingHours string `json:"working_hours,omitempty"`
}

func (p profileDTO) toProfile() Profile {
	return Profile(p)
}

type createAccountRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	UserType       string     `json:"user_type" validate:"required,oneof=O S V"`
	ProfilePicture string     `json:"profile_picture"`
	PhoneNumber    string     `json:"phone_number"`
	Profile        profileDTO `json:"profile"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type editUserRequest struct {
	Email          *string     `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string     `json:"phone_number"`
	ProfilePicture *string     `json:"profile_picture"`
	Profile        *profileDTO `json:"profile"`
}

type userResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	UserType       Type       `json:"user_type"`
	ProfilePicture string     `json:"profile_picture"`
	PhoneNumber    string     `json:"phone_number"`
	Profile        profileDTO `json:"profile"`
	CreatedAt      time.Time  `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

// createAccountHandler registra una cuenta nueva.
// @Summary Crear cuenta
// @Tags User
// @Accept json
// @Produce json
// @Param body body createAccountRequest true "Datos de la cuenta"
// @Success 201 {object} httpjson.Envelope
// @Failure 400 {object} httpjson.Envelope
// @Failure 409 {object} httpjson.Envelope
// @Router /User/CreateAccount [post]
func createAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAccountRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Email:          req.Email,
			Password:       req.Password,
			Type:           Type(req.UserType),
			ProfilePicture: req.ProfilePicture,
			PhoneNumber:    req.PhoneNumber,
			Profile:        req.Profile.toProfile(),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		httpjson.OK(w, http.StatusCreated, "account created", toUserResponse(u))
	}
}

// loginHandler valida credenciales y devuelve un JWT.
// @Summary Login
// @Tags User
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} httpjson.Envelope
// @Failure 401 {object} httpjson.Envelope
// @Router /User/Login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		httpjson.OK(w, http.StatusOK, "login successful", loginResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User:      toUserResponse(res.User),
		})
	}
}

func changePasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireSelf(w, r)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		if err := svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "password updated", nil)
	}
}

func detailsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "user found", toUserResponse(u))
	}
}

func listByTypeHandler(svc *Service, t Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.ListByType(r.Context(), t)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		httpjson.OK(w, http.StatusOK, "ok", out)
	}
}

func editHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireSelf(w, r)
		if !ok {
			return
		}

		var req editUserRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		in := UpdateInput{
			Email:          req.Email,
			PhoneNumber:    req.PhoneNumber,
			ProfilePicture: req.ProfilePicture,
		}
		if req.Profile != nil {
			p := req.Profile.toProfile()
			in.Profile = &p
		}

		u, err := svc.Update(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "user updated", toUserResponse(u))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireSelf(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "account deleted", nil)
	}
}

// requireSelf exige usuario autenticado y que sea el mismo del path.
func requireSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := middleware.CurrentUserID(r.Context())
	if caller == "" {
		httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	target := strings.TrimSpace(chi.URLParam(r, "id"))
	if target != caller {
		httpjson.Fail(w, http.StatusForbidden, ErrForbidden.Error())
		return "", false
	}
	return target, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOwnsPets):
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httpjson.Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailTaken):
		httpjson.Fail(w, http.StatusConflict, err.Error())
	default:
		httpjson.ServerError(w, r, err)
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		UserType:       u.Type,
		ProfilePicture: u.ProfilePicture,
		PhoneNumber:    u.PhoneNumber,
		Profile:        profileDTO(u.Profile),
		CreatedAt:      u.CreatedAt,
	}
}
