package transfers

import (
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

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/Transfer", func(tr chi.Router) {
		tr.Post("/RequestTransfer", requestTransferHandler(svc))
		tr.Put("/RespondToTransfer/{id}", respondHandler(svc))
		tr.Get("/GetAllTransferRequests", listHandler(svc, false))
		tr.Get("/GetTransferRequestsByUserId/{id}", listHandler(svc, true))
	})
}

type requestTransferRequest struct {
	PetID         string `json:"pet_id" validate:"required"`
	NewOwnerEmail string `json:"new_owner_email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
}

type respondRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

type transferResponse struct {
	ID             string     `json:"id"`
	PetID          string     `json:"pet_id"`
	CurrentOwnerID string     `json:"current_owner_id"`
	NewOwnerID     string     `json:"new_owner_id"`
	Status         Status     `json:"status"`
	RequestDate    time.Time  `json:"request_date"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
}

// requestTransferHandler: el dueño actual pide trasladar su mascota a otra cuenta.
// @Summary Solicitar traslado
// @Tags Transfer
// @Accept json
// @Produce json
// @Param body body requestTransferRequest true "Mascota, email destino y contraseña"
// @Success 201 {object} httpjson.Envelope
// @Failure 400 {object} httpjson.Envelope
// @Failure 401 {object} httpjson.Envelope
// @Failure 404 {object} httpjson.Envelope
// @Router /Transfer/RequestTransfer [post]
func requestTransferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req requestTransferRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		created, err := svc.Request(r.Context(), RequestInput{
			PetID:          req.PetID,
			CurrentOwnerID: claims.UserID,
			NewOwnerEmail:  req.NewOwnerEmail,
			Password:       req.Password,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusCreated, "transfer request created", toResponse(created))
	}
}

func respondHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.CurrentUserID(r.Context())
		if userID == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req respondRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, httpjson.Message(err))
			return
		}

		updated, err := svc.Respond(r.Context(), chi.URLParam(r, "id"), userID, *req.Accepted)
		if err != nil {
			writeError(w, r, err)
			return
		}

		msg := "transfer request rejected"
		if updated.Status == StatusAccepted {
			msg = "transfer request accepted"
		}
		httpjson.OK(w, http.StatusOK, msg, toResponse(updated))
	}
}

func listHandler(svc *Service, byUser bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUserID(r.Context()) == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var f ListFilter
		if byUser {
			f.UserID = strings.TrimSpace(chi.URLParam(r, "id"))
		}
		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]transferResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toResponse(it))
		}
		httpjson.OK(w, http.StatusOK, "ok", out)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, pets.ErrNotFound), errors.Is(err, ErrTargetNotFound):
		httpjson.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httpjson.Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrBadState),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrPendingExists),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrOwnerChanged),
		errors.Is(err, pets.ErrCannotOwnPets):
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, locks.ErrNotAcquired):
		httpjson.Fail(w, http.StatusConflict, "pet is busy, retry")
	default:
		httpjson.ServerError(w, r, err)
	}
}

func toResponse(t Request) transferResponse {
	return transferResponse(t)
}
