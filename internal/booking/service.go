package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dawsdoon/AutoCare/internal/catalog"
	"github.com/dawsdoon/AutoCare/internal/maintenance"
	"github.com/dawsdoon/AutoCare/internal/metrics"
	redisclient "github.com/dawsdoon/AutoCare/internal/redis"
)

const (
	EventBookingCreated   = "BOOKING_CREATED"
	EventBookingApproved  = "BOOKING_APPROVED"
	EventBookingRejected  = "BOOKING_REJECTED"
	EventBookingCancelled = "BOOKING_CANCELLED"
	EventBookingCompleted = "BOOKING_COMPLETED"
)

var (
	ErrUnknownService          = errors.New("unknown service type")
	ErrInvalidSlot             = errors.New("slot time is not offered for this service")
	ErrSlotConflict            = errors.New("slot already has a booking for this time")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotBookingOwner         = errors.New("booking belongs to another user")
	ErrNotVehicleOwner         = errors.New("vehicle belongs to another user")
)

type Service struct {
	repo    Repository
	locker  redisclient.Locker
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		locker:  locker,
		metrics: m,
		log:     log,
	}
}

type CreateBookingParams struct {
	UserID      uuid.UUID
	VehicleID   *uuid.UUID
	ServiceType catalog.ServiceType
	Date        time.Time
	SlotTime    string
	Notes       *string
}

// CreateBooking reserves a (date, slot) pair for a user. The conflict check
// runs under a distributed slot lock so two concurrent requests for the same
// slot cannot both pass it, and the insert itself is backed by the slot
// uniqueness index as the final arbiter.
func (s *Service) CreateBooking(ctx context.Context, p CreateBookingParams) (*Booking, error) {
	iv, ok := catalog.Lookup(p.ServiceType)
	if !ok {
		return nil, ErrUnknownService
	}

	if !slotOffered(p.ServiceType, p.SlotTime) {
		return nil, ErrInvalidSlot
	}

	if _, err := s.repo.GetUserByID(ctx, p.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if p.VehicleID != nil {
		v, err := s.repo.GetVehicleByID(ctx, *p.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("load vehicle: %w", err)
		}
		if v.UserID != p.UserID {
			return nil, ErrNotVehicleOwner
		}
	}

	var created *Booking

	err := s.locker.WithSlotLock(ctx, p.Date, p.SlotTime, func(lockCtx context.Context) error {
		// Inside the critical section re-check the advisory conflict.
		existing, err := s.repo.ListBookingsForDate(lockCtx, p.Date)
		if err != nil {
			return fmt.Errorf("list bookings for date: %w", err)
		}
		if HasConflict(p.Date, p.SlotTime, existing) {
			return ErrSlotConflict
		}

		b, err := s.repo.CreateBooking(lockCtx, &Booking{
			UserID:      p.UserID,
			VehicleID:   p.VehicleID,
			ServiceType: p.ServiceType,
			ServiceName: iv.DisplayName,
			BookingDate: p.Date,
			SlotTime:    p.SlotTime,
			Notes:       p.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create booking: %w", err)
		}

		created = b

		s.logEvent(lockCtx, b.ID, EventBookingCreated, map[string]any{
			"service_type": string(p.ServiceType),
			"booking_date": p.Date.Format("2006-01-02"),
			"slot_time":    p.SlotTime,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			s.metrics.BookingConflicts.Inc()
			return nil, ErrSlotBeingBooked
		}
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.BookingsCreated.Inc()
	s.log.Info().
		Str("booking_id", created.ID.String()).
		Str("service", string(created.ServiceType)).
		Str("slot", created.SlotTime).
		Msg("booking created")

	return created, nil
}

// AvailableSlots returns the day's slot menu with availability flags.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time, serviceType catalog.ServiceType) ([]Slot, error) {
	bookings, err := s.repo.ListBookingsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings for date: %w", err)
	}
	return AvailableSlots(date, serviceType, bookings), nil
}

// ApproveBooking moves a pending booking to approved (admin flow).
func (s *Service) ApproveBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.adminTransition(ctx, id, StatusApproved, EventBookingApproved)
}

// RejectBooking moves a pending booking to rejected (admin flow).
func (s *Service) RejectBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.adminTransition(ctx, id, StatusRejected, EventBookingRejected)
}

func (s *Service) adminTransition(ctx context.Context, id uuid.UUID, to Status, event string) (*Booking, error) {
	updated, err := s.repo.UpdateBookingStatus(ctx, id, StatusPending, to)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			// Distinguish a missing row from one in the wrong state.
			if _, getErr := s.repo.GetBookingByID(ctx, id); getErr == nil {
				return nil, ErrInvalidStatusTransition
			}
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(to)).Inc()
	s.logEvent(ctx, updated.ID, event, map[string]any{})

	return updated, nil
}

// CancelBooking cancels a pending or approved booking on behalf of its
// owner, freeing the slot.
func (s *Service) CancelBooking(ctx context.Context, id, userID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	if !b.CanBeCancelled() {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateBookingStatus(ctx, id, b.Status, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(StatusCancelled)).Inc()
	s.logEvent(ctx, updated.ID, EventBookingCancelled, map[string]any{})

	return updated, nil
}

// CompleteBooking marks a pending or approved booking as completed and
// records the vehicle mileage at service time, which feeds the maintenance
// schedule. Approval is not a prerequisite: walk-ins get serviced and closed
// out in one step.
func (s *Service) CompleteBooking(ctx context.Context, id uuid.UUID, mileageAtService *int) (*Booking, error) {
	updated, err := s.repo.CompleteBooking(ctx, id, mileageAtService)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			if _, getErr := s.repo.GetBookingByID(ctx, id); getErr == nil {
				return nil, ErrInvalidStatusTransition
			}
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(StatusCompleted)).Inc()
	payload := map[string]any{}
	if mileageAtService != nil {
		payload["mileage_at_service"] = *mileageAtService
	}
	s.logEvent(ctx, updated.ID, EventBookingCompleted, payload)

	return updated, nil
}

// GetBooking returns a booking, restricted to its owner unless asAdmin.
func (s *Service) GetBooking(ctx context.Context, id, userID uuid.UUID, asAdmin bool) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asAdmin && b.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	return b, nil
}

func (s *Service) ListBookingsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	limit, offset = clampPage(limit, offset)
	bookings, err := s.repo.ListBookingsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	return bookings, nil
}

func (s *Service) ListBookingsByStatus(ctx context.Context, status Status, limit, offset int) ([]Booking, error) {
	limit, offset = clampPage(limit, offset)
	bookings, err := s.repo.ListBookingsByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings by status: %w", err)
	}
	return bookings, nil
}

// AddVehicle registers a vehicle for a user.
func (s *Service) AddVehicle(ctx context.Context, v *Vehicle) (*Vehicle, error) {
	created, err := s.repo.CreateVehicle(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return created, nil
}

func (s *Service) ListVehicles(ctx context.Context, userID uuid.UUID) ([]Vehicle, error) {
	vehicles, err := s.repo.ListVehiclesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// MaintenanceSchedule evaluates every catalog service against the vehicle's
// completed service history and returns the ranked schedule, most urgent
// first.
func (s *Service) MaintenanceSchedule(ctx context.Context, vehicleID, userID uuid.UUID, currentMileage *int, today time.Time) ([]maintenance.ScheduleItem, error) {
	v, err := s.repo.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, ErrNotVehicleOwner
	}

	if currentMileage == nil {
		currentMileage = v.Mileage
	}

	history, err := s.repo.ListCompletedByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list completed bookings: %w", err)
	}

	items := BuildSchedule(history, currentMileage, today)
	return items, nil
}

// BuildSchedule derives the maintenance schedule from a vehicle's completed
// bookings. Exposed for the reminder worker.
func BuildSchedule(history []Booking, currentMileage *int, today time.Time) []maintenance.ScheduleItem {
	items := make([]maintenance.ScheduleItem, 0)

	for _, iv := range catalog.All() {
		last := lastCompleted(history, iv.Type)

		var lastDate *time.Time
		var lastMileage *int
		if last != nil {
			d := last.BookingDate
			lastDate = &d
			lastMileage = last.MileageAtService
		}

		verdict := maintenance.CombinedStatus(iv, lastDate, lastMileage, currentMileage, today)
		items = append(items, maintenance.ScheduleItem{
			Service:            iv,
			LastServiceDate:    lastDate,
			LastServiceMileage: lastMileage,
			Verdict:            verdict,
		})
	}

	maintenance.RankSchedule(items)
	return items
}

// lastCompleted returns the most recent completed booking of the given
// service type, or nil. Ordering of history does not matter.
func lastCompleted(history []Booking, t catalog.ServiceType) *Booking {
	var latest *Booking
	for i := range history {
		b := &history[i]
		if b.ServiceType != t || b.Status != StatusCompleted {
			continue
		}
		if latest == nil || b.BookingDate.After(latest.BookingDate) {
			latest = b
		}
	}
	return latest
}

func slotOffered(t catalog.ServiceType, slotTime string) bool {
	for _, label := range catalog.SlotMenu(t) {
		if label == slotTime {
			return true
		}
	}
	return false
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) logEvent(ctx context.Context, bookingID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	id := bookingID

	ev := EventLog{
		EventType: eventType,
		BookingID: &id,
		Payload:   data,
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event", eventType).
			Str("booking_id", bookingID.String()).
			Msg("insert booking event")
	}
}
