package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("slot already taken")
)

// Repository contains all DB interactions needed by the service and the
// reminder worker.
type Repository interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	CreateVehicle(ctx context.Context, v *Vehicle) (*Vehicle, error)
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	ListVehiclesByUser(ctx context.Context, userID uuid.UUID) ([]Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)

	// CreateBooking relies on the slot uniqueness index and returns
	// ErrSlotTaken when another non-cancelled booking holds the slot.
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookingsForDate(ctx context.Context, date time.Time) ([]Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error)
	ListBookingsByStatus(ctx context.Context, status Status, limit, offset int) ([]Booking, error)
	ListCompletedByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID, mileageAtService *int) (*Booking, error)

	UpsertReminder(ctx context.Context, r Reminder) error

	InsertEvent(ctx context.Context, ev EventLog) error
}
