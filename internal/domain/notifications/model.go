package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification es un aviso para un usuario. Sólo cambia IsRead.
type Notification struct {
	ID      string
	UserID  string
	PetID   string // opcional
	Message string
	IsRead  bool

	CreatedAt time.Time
}

func New(userID, petID, message string, at time.Time) Notification {
	return Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		PetID:     petID,
		Message:   message,
		CreatedAt: at,
	}
}
