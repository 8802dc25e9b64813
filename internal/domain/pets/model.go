package pets

import "time"

// Pet representa una mascota registrada y su dueño actual.
type Pet struct {
	ID    string
	Owner Owner

	Name         string
	Species      string
	Breed        string
	Gender       string
	Weight       string
	Location     string
	HealthIssues string
	PetPicture   string

	DateOfBirth time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
