package postgres

import (
	"time"

	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
)

// Los timestamps los pone el dominio; gorm no los toca.

type userRecord struct {
	ID             string `gorm:"primaryKey;size:36"`
	Email          string `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash   string `gorm:"not null"`
	UserType       string `gorm:"size:1;not null;index"`
	ProfilePicture string
	PhoneNumber    string `gorm:"size:32"`

	CompleteName string
	Name         string
	ClinicName   string
	Address      string
	CoverPicture string
	WorkingDays  string
	WorkingHours string

	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (userRecord) TableName() string { return "users" }

func fromUser(u users.User) userRecord {
	return userRecord{
		ID:             u.ID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		UserType:       string(u.Type),
		ProfilePicture: u.ProfilePicture,
		PhoneNumber:    u.PhoneNumber,
		CompleteName:   u.Profile.CompleteName,
		Name:           u.Profile.Name,
		ClinicName:     u.Profile.ClinicName,
		Address:        u.Profile.Address,
		CoverPicture:   u.Profile.CoverPicture,
		WorkingDays:    u.Profile.WorkingDays,
		WorkingHours:   u.Profile.WorkingHours,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r userRecord) toDomain() users.User {
	return users.User{
		ID:             r.ID,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Type:           users.Type(r.UserType),
		ProfilePicture: r.ProfilePicture,
		PhoneNumber:    r.PhoneNumber,
		Profile: users.Profile{
			CompleteName: r.CompleteName,
			Name:         r.Name,
			ClinicName:   r.ClinicName,
			Address:      r.Address,
			CoverPicture: r.CoverPicture,
			WorkingDays:  r.WorkingDays,
			WorkingHours: r.WorkingHours,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type petRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	OwnerID   string `gorm:"size:36;not null;index"`
	OwnerKind string `gorm:"size:1;not null;index"`

	Name         string    `gorm:"not null"`
	DateOfBirth  time.Time `gorm:"type:date;not null"`
	Species      string    `gorm:"not null"`
	Breed        string
	Gender       string
	Weight       string
	Location     string
	HealthIssues string
	PetPicture   string

	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (petRecord) TableName() string { return "pets" }

func fromPet(p pets.Pet) petRecord {
	return petRecord{
		ID:           p.ID,
		OwnerID:      p.Owner.OwnerID(),
		OwnerKind:    string(p.Owner.Kind()),
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

func (r petRecord) toDomain() (pets.Pet, error) {
	owner, err := pets.ParseOwner(r.OwnerKind, r.OwnerID)
	if err != nil {
		return pets.Pet{}, err
	}
	return pets.Pet{
		ID:           r.ID,
		Owner:        owner,
		Name:         r.Name,
		DateOfBirth:  r.DateOfBirth,
		Species:      r.Species,
		Breed:        r.Breed,
		Gender:       r.Gender,
		Weight:       r.Weight,
		Location:     r.Location,
		HealthIssues: r.HealthIssues,
		PetPicture:   r.PetPicture,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

type adoptionRecord struct {
	ID             string `gorm:"primaryKey;size:36"`
	PetID          string `gorm:"size:36;not null;index"`
	CurrentOwnerID string `gorm:"size:36;not null;index"`
	NewOwnerID     string `gorm:"size:36;not null;index"`
	Status         string `gorm:"size:16;not null;index"`

	RequestDate  time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false"`
	IsDelivered  bool      `gorm:"not null;default:false"`
	DeliveryDate *time.Time
}

func (adoptionRecord) TableName() string { return "adoption_requests" }

func fromAdoption(r adoptions.Request) adoptionRecord {
	return adoptionRecord{
		ID:             r.ID,
		PetID:          r.PetID,
		CurrentOwnerID: r.CurrentOwnerID,
		NewOwnerID:     r.NewOwnerID,
		Status:         string(r.Status),
		RequestDate:    r.RequestDate,
		UpdatedAt:      r.UpdatedAt,
		IsDelivered:    r.IsDelivered,
		DeliveryDate:   r.DeliveryDate,
	}
}

func (r adoptionRecord) toDomain() adoptions.Request {
	return adoptions.Request{
		ID:             r.ID,
		PetID:          r.PetID,
		CurrentOwnerID: r.CurrentOwnerID,
		NewOwnerID:     r.NewOwnerID,
		Status:         adoptions.Status(r.Status),
		RequestDate:    r.RequestDate,
		UpdatedAt:      r.UpdatedAt,
		IsDelivered:    r.IsDelivered,
		DeliveryDate:   r.DeliveryDate,
	}
}

type transferRecord struct {
	ID             string `gorm:"primaryKey;size:36"`
	PetID          string `gorm:"size:36;not null;index"`
	CurrentOwnerID string `gorm:"size:36;not null;index"`
	NewOwnerID     string `gorm:"size:36;not null;index"`
	Status         string `gorm:"size:16;not null;index"`

	RequestDate time.Time `gorm:"not null"`
	RespondedAt *time.Time
}

func (transferRecord) TableName() string { return "transfer_requests" }

func fromTransfer(r transfers.Request) transferRecord {
	return transferRecord{
		ID:             r.ID,
		PetID:          r.PetID,
		CurrentOwnerID: r.CurrentOwnerID,
		NewOwnerID:     r.NewOwnerID,
		Status:         string(r.Status),
		RequestDate:    r.RequestDate,
		RespondedAt:    r.RespondedAt,
	}
}

func (r transferRecord) toDomain() transfers.Request {
	return transfers.Request{
		ID:             r.ID,
		PetID:          r.PetID,
		CurrentOwnerID: r.CurrentOwnerID,
		NewOwnerID:     r.NewOwnerID,
		Status:         transfers.Status(r.Status),
		RequestDate:    r.RequestDate,
		RespondedAt:    r.RespondedAt,
	}
}

type notificationRecord struct {
	ID      string `gorm:"primaryKey;size:36"`
	UserID  string `gorm:"size:36;not null;index"`
	PetID   string `gorm:"size:36"`
	Message string `gorm:"not null"`
	IsRead  bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
}

func (notificationRecord) TableName() string { return "notifications" }

func fromNotification(n notifications.Notification) notificationRecord {
	return notificationRecord(n)
}

func (r notificationRecord) toDomain() notifications.Notification {
	return notifications.Notification(r)
}
