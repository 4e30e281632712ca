package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/dawsdoon/AutoCare/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a raw booking status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Vehicle struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Make      string
	Model     string
	Year      int
	Mileage   *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is one appointment request for a service on a given date and
// time-of-day slot. BookingDate carries the calendar day only.
type Booking struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	VehicleID        *uuid.UUID
	ServiceType      catalog.ServiceType
	ServiceName      string
	BookingDate      time.Time
	SlotTime         string
	Status           Status
	Notes            *string
	MileageAtService *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OccupiesSlot reports whether this booking keeps its (date, time) slot
// taken. Only cancellation frees a slot.
func (b *Booking) OccupiesSlot() bool {
	return b.Status != StatusCancelled
}

func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusApproved
}

// Reminder is a due-service notice produced by the reminder worker for a
// vehicle, one row per (vehicle, service).
type Reminder struct {
	ID          uuid.UUID
	VehicleID   uuid.UUID
	ServiceType catalog.ServiceType
	Urgency     string
	DueDate     *time.Time
	DueMileage  *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventLog struct {
	ID        int64
	EventType string
	BookingID *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
