package adoptions

import (
	"strings"
	"time"
)

// Status de una solicitud de adopción.
// @Enum Pending, Accepted, Rejected, Cancelled, Delivered
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
	StatusDelivered Status = "Delivered"
)

// Active: todavía puede avanzar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) Terminal() bool {
	return !s.Active()
}

func ParseStatus(v string) (Status, bool) {
	for _, s := range []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusDelivered} {
		if strings.EqualFold(strings.TrimSpace(v), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Request es una solicitud de adopción. CurrentOwnerID es el refugio al
// momento de pedirla; NewOwnerID es quien quiere adoptar.
type Request struct {
	ID             string
	PetID          string
	CurrentOwnerID string
	NewOwnerID     string
	Status         Status

	RequestDate  time.Time
	UpdatedAt    time.Time
	IsDelivered  bool
	DeliveryDate *time.Time
}
