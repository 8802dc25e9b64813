package transfers

import "time"

// @Enum Pending, Accepted, Rejected
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// Request es un traslado de dueño a dueño. Se responde una sola vez.
type Request struct {
	ID             string
	PetID          string
	CurrentOwnerID string
	NewOwnerID     string
	Status         Status

	RequestDate time.Time
	RespondedAt *time.Time
}
