package pets

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petrack/internal/middleware"
	"petrack/internal/platform/httpjson"
	"petrack/internal/ports/locks"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/Pet", func(pr chi.Router) {
		pr.Post("/RegisterPet", registerPetHandler(svc))
		pr.Get("/GetAllPets", listAllHandler(svc))
		pr.Get("/GetPetsByOwner/{ownerId}", listByOwnerHandler(svc))
		pr.Put("/EditPet/{petId}", editPetHandler(svc))
		pr.Delete("/DeletePet/{petId}", deletePetHandler(svc))
		pr.Get("/SearchById/{id}", getPetHandler(svc))
	})
}

type registerPetRequest struct {
	OwnerID      string `json:"owner_id"`
	OwnerKind    string `json:"owner_kind" validate:"omitempty,oneof=O S"`
	Name         string `json:"name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" validate:"required"` // YYYY-MM-DD o RFC3339
	Species      string `json:"species" validate:"required"`
	Breed        string `json:"breed"`
	Gender       string `json:"gender"`
	Weight       string `json:"weight"`
	Location     string `json:"location"`
	HealthIssues string `json:"health_issues"`
	PetPicture   string `json:"pet_picture"`
}

type editPetRequest struct {
	Name         *string `json:"name"`
	DateOfBirth  *string `json:"date_of_birth"`
	Species      *string `json:"species"`
	Breed        *string `json:"breed"`
	Gender       *string `json:"gender"`
	Weight       *string `json:"weight"`
	Location     *string `json:"location"`
	HealthIssues *string `json:"health_issues"`
	PetPicture   *string `json:"pet_picture"`
}

type ownerResponse struct {
	ID   string    `json:"id"`
	Kind OwnerKind `json:"kind"`
	Type string    `json:"type"`
}

// PetResponse es la forma pública de una mascota; la reutilizan los workflows.
type PetResponse struct {
	ID           string        `json:"id"`
	Owner        ownerResponse `json:"owner"`
	Name         string        `json:"name"`
	DateOfBirth  time.Time     `json:"date_of_birth"`
	Species      string        `json:"species"`
	Breed        string        `json:"breed"`
	Gender       string        `json:"gender"`
	Weight       string        `json:"weight"`
	Location     string        `json:"location"`
	HealthIssues string        `json:"health_issues"`
	PetPicture   string        `json:"pet_picture"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// registerPetHandler crea una mascota a nombre del usuario autenticado.
// @Summary Registrar mascota
// @Tags Pet
// @Accept json
// @Produce json
// @Param body body registerPetRequest true "Datos de la mascota"
// @Success 201 {object} httpjson.Envelope
// @Failure 400 {object} httpjson.Envelope
// @Failure 401 {object} httpjson.Envelope
// @Failure 403 {object} httpjson.Envelope
// @Router /Pet/RegisterPet [post]
func registerPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req registerPetRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}

		p, err := svc.Register(r.Context(), claims.UserID, RegisterInput{
			OwnerID:      req.OwnerID,
			OwnerKind:    req.OwnerKind,
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			Gender:       req.Gender,
			Weight:       req.Weight,
			Location:     req.Location,
			HealthIssues: req.HealthIssues,
			PetPicture:   req.PetPicture,
			DateOfBirth:  dob,
		})
		if err != nil {
			WriteError(w, r, err)
			return
		}

		httpjson.OK(w, http.StatusCreated, "pet registered", ToResponse(p))
	}
}

func listAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		items, err := svc.ListAll(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "ok", ToResponses(items))
	}
}

func listByOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		items, err := svc.ListByOwner(r.Context(), chi.URLParam(r, "ownerId"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "ok", ToResponses(items))
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "pet found", ToResponse(p))
	}
}

// editPetHandler: sólo el dueño. Campos ausentes no se tocan.
func editPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.CurrentUserID(r.Context())
		if userID == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req editPetRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		in := UpdateInput{
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			Gender:       req.Gender,
			Weight:       req.Weight,
			Location:     req.Location,
			HealthIssues: req.HealthIssues,
			PetPicture:   req.PetPicture,
		}
		if req.DateOfBirth != nil {
			dob, err := parseDate(*req.DateOfBirth)
			if err != nil {
				httpjson.Fail(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
				return
			}
			in.DateOfBirth = &dob
		}

		p, err := svc.Update(r.Context(), userID, chi.URLParam(r, "petId"), in)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "pet updated", ToResponse(p))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.CurrentUserID(r.Context())
		if userID == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := svc.Delete(r.Context(), userID, chi.URLParam(r, "petId")); err != nil {
			WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "pet deleted", nil)
	}
}

// WriteError traduce los errores de pets a status HTTP.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrCannotOwnPets), errors.Is(err, ErrOpenRequests):
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, locks.ErrNotAcquired):
		httpjson.Fail(w, http.StatusConflict, "pet is busy, retry")
	case errors.Is(err, ErrForbidden):
		httpjson.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Fail(w, http.StatusNotFound, err.Error())
	default:
		httpjson.ServerError(w, r, err)
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func ToResponse(p Pet) PetResponse {
	owner := MatchOwner(p.Owner,
		func(o PersonOwner) ownerResponse {
			return ownerResponse{ID: o.UserID, Kind: OwnerKindPerson, Type: "person"}
		},
		func(o ShelterOwner) ownerResponse {
			return ownerResponse{ID: o.UserID, Kind: OwnerKindShelter, Type: "shelter"}
		},
	)
	return PetResponse{
		ID:           p.ID,
		Owner:        owner,
		Name:         p.Name,
		DateOfBirth:  p.DateOfBirth,
		Species:      p.Species,
		Breed:        p.Breed,
		Gender:       p.Gender,
		Weight:       p.Weight,
		Location:     p.Location,
		HealthIssues: p.HealthIssues,
		PetPicture:   p.PetPicture,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToResponses(items []Pet) []PetResponse {
	out := make([]PetResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToResponse(p))
	}
	return out
}
