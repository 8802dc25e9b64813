package notifications

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
	r.Route("/Notification", func(nr chi.Router) {
		nr.Put("/MarkNotificationAsRead/{id}", markAsReadHandler(svc))
		nr.Get("/GetUserNotifications/{userId}", listHandler(svc))
		nr.Get("/CountUnread/{userId}", countUnreadHandler(svc))
	})
}

type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PetID     string    `json:"pet_id,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func markAsReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.CurrentUserID(r.Context())
		if userID == "" {
			httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		n, err := svc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "notification marked as read", toResponse(n))
	}
}

// listHandler devuelve las notificaciones propias, más nuevas primero.
// @Summary Notificaciones del usuario
// @Tags Notification
// @Produce json
// @Param userId path string true "Usuario"
// @Success 200 {object} httpjson.Envelope
// @Failure 403 {object} httpjson.Envelope
// @Router /Notification/GetUserNotifications/{userId} [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireRecipient(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toResponse(n))
		}
		httpjson.OK(w, http.StatusOK, "ok", out)
	}
}

func countUnreadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireRecipient(w, r)
		if !ok {
			return
		}

		n, err := svc.UnreadCount(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.OK(w, http.StatusOK, "ok", map[string]int{"unread": n})
	}
}

// requireRecipient: cada usuario sólo ve sus propias notificaciones.
func requireRecipient(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := middleware.CurrentUserID(r.Context())
	if caller == "" {
		httpjson.Fail(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	if strings.TrimSpace(chi.URLParam(r, "userId")) != caller {
		httpjson.Fail(w, http.StatusForbidden, ErrForbidden.Error())
		return "", false
	}
	return caller, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Fail(w, http.StatusNotFound, err.Error())
	default:
		httpjson.ServerError(w, r, err)
	}
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse(n)
}
