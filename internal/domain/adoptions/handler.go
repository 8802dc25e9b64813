package adoptions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petrack/internal/domain/pets"
	"petrack/internal/middleware"
	"petrack/internal/platform/httpjson"
	"petrack/internal/ports/locks"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/Adoption", func(ar chi.Router) {
		ar.Get("/GetAllAdoptionPets", adoptablePetsHandler(petsSvc))

		ar.Post("/RequestAdoption", requestAdoptionHandler(svc, petsSvc))
		ar.Put("/AcceptAdoptionRequest/{id}", transitionHandler(svc, petsSvc, svc.Accept, "adoption request accepted"))
		ar.Put("/ConfirmDelivery/{id}", transitionHandler(svc, petsSvc, svc.ConfirmDelivery, "delivery confirmed"))
		ar.Put("/RejectAdoptionRequest/{id}", transitionHandler(svc, petsSvc, svc.Reject, "adoption request rejected"))
		ar.Put("/CancelAdoptionRequest/{id}", transitionHandler(svc, petsSvc, svc.Cancel, "adoption request cancelled"))

		ar.Get("/ListAllAdoptionRequests", listHandler(svc, petsSvc, func(*http.Request) ListFilter { return ListFilter{} }))
		ar.Get("/ListAdoptionRequestsForPet/{petId}", listHandler(svc, petsSvc, func(r *http.Request) ListFilter {
			return ListFilter{PetID: chi.URLParam(r, "petId")}
		}))
		ar.Get("/ListAllAdoptionRequestsForUser/{userId}", listHandler(svc, petsSvc, func(r *http.Request) ListFilter {
			return ListFilter{UserID: chi.URLParam(r, "userId")}
		}))
		ar.Get("/ListPendingAdoptionRequestsForUser/{userId}", listHandler(svc, petsSvc, func(r *http.Request) ListFilter {
			return ListFilter{UserID: chi.URLParam(r, "userId"), Statuses: []Status{StatusPending}}
		}))

		for path, st := range map[string]Status{
			"/ListPendingAdoptionRequest":   StatusPending,
			"/ListAcceptedAdoptionRequest":  StatusAccepted,
			"/ListCancelledAdoptionRequest": StatusCancelled,
			"/ListRejectedAdoptionRequest":  StatusRejected,
			"/ListDeliveredAdoption":        StatusDelivered,
		} {
			ar.Get(path, listHandler(svc, petsSvc, func(*http.Request) ListFilter {
				return ListFilter{Statuses: []Status{st}}
			}))
		}
	})
}

type requestAdoptionRequest struct {
	PetID string `json:"pet_id" validate:"required"`
}

type requestResponse struct {
	ID             string            `json:"id"`
	PetID          string            `json:"pet_id"`
	CurrentOwnerID string            `json:"current_owner_id"`
	NewOwnerID     string            `json:"new_owner_id"`
	Status         Status            `json:"status"`
	RequestDate    time.Time         `json:"request_date"`
	UpdatedAt      time.Time         `json:"updated_at"`
	IsDelivered    bool              `json:"is_delivered"`
	DeliveryDate   *time.Time        `json:"delivery_date,omitempty"`
	Pet            *pets.PetResponse `json:"pet,omitempty"`
}

func adoptablePetsHandler(petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		items, err := petsSvc.ListAdoptable(r.Context())
		if err != nil {
			pets.WriteError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "ok", pets.ToResponses(items))
	}
}

// requestAdoptionHandler crea la solicitud a nombre del usuario autenticado.
// @Summary Solicitar adopción
// @Tags Adoption
// @Accept json
// @Produce json
// @Param body body requestAdoptionRequest true "Mascota"
// @Success 201 {object} httpjson.Envelope
// @Failure 400 {object} httpjson.Envelope
// @Failure 404 {object} httpjson.Envelope
// @Router /Adoption/RequestAdoption [post]
func requestAdoptionHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req requestAdoptionRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		created, err := svc.Request(r.Context(), req.PetID, claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusCreated, "adoption request created", withPet(r.Context(), petsSvc, created))
	}
}

type transitionFunc func(ctx context.Context, requestID, actorID string) (Request, error)

// transitionHandler sirve accept/confirm/reject/cancel; el actor es siempre el usuario autenticado.
func transitionHandler(svc *Service, petsSvc *pets.Service, fn transitionFunc, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.CurrentUserID(r.Context())
		if userID == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		updated, err := fn(r.Context(), chi.URLParam(r, "id"), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, message, withPet(r.Context(), petsSvc, updated))
	}
}

func listHandler(svc *Service, petsSvc *pets.Service, filter func(*http.Request) ListFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.List(r.Context(), filter(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]requestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, withPet(r.Context(), petsSvc, it))
		}
		httpjson.OK(w, http.StatusOK, "ok", out)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, pets.ErrNotFound):
		httpjson.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrBadState),
		errors.Is(err, ErrNotAdoptable),
		errors.Is(err, ErrAlreadyRequested),
		errors.Is(err, ErrAlreadyOwner),
		errors.Is(err, ErrPetTaken),
		errors.Is(err, ErrOwnerChanged),
		errors.Is(err, pets.ErrCannotOwnPets):
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, locks.ErrNotAcquired):
		httpjson.Fail(w, http.StatusConflict, "pet is busy, retry")
	default:
		httpjson.ServerError(w, r, err)
	}
}

// withPet adjunta el resumen de la mascota; si ya no existe se omite.
func withPet(ctx context.Context, petsSvc *pets.Service, req Request) requestResponse {
	out := requestResponse{
		ID:             req.ID,
		PetID:          req.PetID,
		CurrentOwnerID: req.CurrentOwnerID,
		NewOwnerID:     req.NewOwnerID,
		Status:         req.Status,
		RequestDate:    req.RequestDate,
		UpdatedAt:      req.UpdatedAt,
		IsDelivered:    req.IsDelivered,
		DeliveryDate:   req.DeliveryDate,
	}
	if p, err := petsSvc.GetByID(ctx, req.PetID); err == nil {
		pr := pets.ToResponse(p)
		out.Pet = &pr
	}
	return out
}
