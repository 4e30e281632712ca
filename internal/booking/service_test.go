package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawsdoon/AutoCare/internal/catalog"
	"github.com/dawsdoon/AutoCare/internal/maintenance"
	"github.com/dawsdoon/AutoCare/internal/metrics"
	redisclient "github.com/dawsdoon/AutoCare/internal/redis"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	users    map[uuid.UUID]*User
	vehicles map[uuid.UUID]*Vehicle
	bookings map[uuid.UUID]*Booking
	events   []EventLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[uuid.UUID]*User),
		vehicles: make(map[uuid.UUID]*Vehicle),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (f *fakeRepo) addUser() uuid.UUID {
	id := uuid.New()
	f.users[id] = &User{ID: id, Role: RoleCustomer}
	return id
}

func (f *fakeRepo) addVehicle(userID uuid.UUID, mileage *int) uuid.UUID {
	id := uuid.New()
	f.vehicles[id] = &Vehicle{ID: id, UserID: userID, Mileage: mileage}
	return id
}

func (f *fakeRepo) CreateUser(_ context.Context, u *User) (*User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, ErrEmailTaken
		}
	}
	cp := *u
	cp.ID = uuid.New()
	f.users[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) CreateVehicle(_ context.Context, v *Vehicle) (*Vehicle, error) {
	cp := *v
	cp.ID = uuid.New()
	f.vehicles[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetVehicleByID(_ context.Context, id uuid.UUID) (*Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (f *fakeRepo) ListVehiclesByUser(_ context.Context, userID uuid.UUID) ([]Vehicle, error) {
	var out []Vehicle
	for _, v := range f.vehicles {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListVehicles(_ context.Context) ([]Vehicle, error) {
	var out []Vehicle
	for _, v := range f.vehicles {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeRepo) CreateBooking(_ context.Context, b *Booking) (*Booking, error) {
	for _, existing := range f.bookings {
		if sameDay(existing.BookingDate, b.BookingDate) &&
			existing.SlotTime == b.SlotTime &&
			existing.OccupiesSlot() {
			return nil, ErrSlotTaken
		}
	}
	cp := *b
	cp.ID = uuid.New()
	cp.Status = StatusPending
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.bookings[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetBookingByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListBookingsForDate(_ context.Context, date time.Time) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if sameDay(b.BookingDate, date) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBookingsByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBookingsByStatus(_ context.Context, status Status, _, _ int) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListCompletedByVehicle(_ context.Context, vehicleID uuid.UUID) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.VehicleID != nil && *b.VehicleID == vehicleID && b.Status == StatusCompleted {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateBookingStatus(_ context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return nil, ErrBookingNotFound
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return b, nil
}

func (f *fakeRepo) CompleteBooking(_ context.Context, id uuid.UUID, mileage *int) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok || (b.Status != StatusPending && b.Status != StatusApproved) {
		return nil, ErrBookingNotFound
	}
	b.Status = StatusCompleted
	b.MileageAtService = mileage
	b.UpdatedAt = time.Now()
	return b, nil
}

func (f *fakeRepo) UpsertReminder(_ context.Context, _ Reminder) error { return nil }

func (f *fakeRepo) InsertEvent(_ context.Context, ev EventLog) error {
	f.events = append(f.events, ev)
	return nil
}

// fakeLocker runs the critical section inline.
type fakeLocker struct {
	err   error
	calls int
}

func (l *fakeLocker) WithSlotLock(ctx context.Context, _ time.Time, _ string, fn func(ctx context.Context) error) error {
	l.calls++
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

func newTestService(repo *fakeRepo, locker *fakeLocker) *Service {
	m := metrics.New(prometheus.NewRegistry())
	return NewService(repo, locker, m, zerolog.Nop())
}

func TestCreateBooking(t *testing.T) {
	repo := newFakeRepo()
	locker := &fakeLocker{}
	svc := newTestService(repo, locker)

	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "10:30 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "Oil Change", b.ServiceName)
	assert.Nil(t, b.Notes)
	assert.Equal(t, 1, locker.calls)

	require.Len(t, repo.events, 1)
	assert.Equal(t, EventBookingCreated, repo.events[0].EventType)

	// Notes are optional and pass through untouched when present.
	notes := "squeaky brakes"
	b2, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "2:00 PM",
		Notes:       &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, b2.Notes)
	assert.Equal(t, "squeaky brakes", *b2.Notes)
}

func TestCreateBookingConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})

	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	params := CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "10:30 AM",
	}

	_, err := svc.CreateBooking(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), params)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCreateBookingAfterCancellation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})

	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	params := CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "10:30 AM",
	}

	first, err := svc.CreateBooking(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), first.ID, userID)
	require.NoError(t, err)

	// Cancelled booking frees the slot for a new one.
	_, err = svc.CreateBooking(context.Background(), params)
	assert.NoError(t, err)
}

func TestCreateBookingLockContended(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{err: redisclient.ErrLockNotAcquired})

	userID := repo.addUser()
	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		SlotTime:    "9:00 AM",
	})
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestCreateBookingValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceType("detailing"),
		Date:        date,
		SlotTime:    "9:00 AM",
	})
	assert.ErrorIs(t, err, ErrUnknownService)

	// brake-inspection does not offer 10:30 AM.
	_, err = svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceBrakeInspection,
		Date:        date,
		SlotTime:    "10:30 AM",
	})
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      uuid.New(),
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "9:00 AM",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApproveAndRejectTransitions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "9:00 AM",
	})
	require.NoError(t, err)

	approved, err := svc.ApproveBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	// Approved bookings cannot be rejected.
	_, err = svc.RejectBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.ApproveBooking(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	otherID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceTireRotation,
		Date:        date,
		SlotTime:    "11:00 AM",
	})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrNotBookingOwner)

	cancelled, err := svc.CancelBooking(context.Background(), b.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Terminal now.
	_, err = svc.CancelBooking(context.Background(), b.ID, userID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCompleteBooking(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "2:00 PM",
	})
	require.NoError(t, err)

	_, err = svc.ApproveBooking(context.Background(), b.ID)
	require.NoError(t, err)

	mileage := 42000
	done, err := svc.CompleteBooking(context.Background(), b.ID, &mileage)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.MileageAtService)
	assert.Equal(t, 42000, *done.MileageAtService)

	// Completed is terminal.
	_, err = svc.CompleteBooking(context.Background(), b.ID, &mileage)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCompleteBookingFromPending(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "9:00 AM",
	})
	require.NoError(t, err)

	// Walk-ins complete straight from pending, no approval step.
	done, err := svc.CompleteBooking(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Nil(t, done.MileageAtService)
}

func TestCompleteBookingRejectsCancelled(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "9:00 AM",
	})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), b.ID, userID)
	require.NoError(t, err)

	_, err = svc.CompleteBooking(context.Background(), b.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestMaintenanceSchedule(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})

	userID := repo.addUser()
	current := 12600
	vehicleID := repo.addVehicle(userID, &current)

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	// Oil change completed 95 days ago at 10000 miles: overdue on time and
	// due-soon on mileage (400 miles left).
	lastMileage := 10000
	vid := vehicleID
	histID := uuid.New()
	repo.bookings[histID] = &Booking{
		ID:               histID,
		UserID:           userID,
		VehicleID:        &vid,
		ServiceType:      catalog.ServiceOilChange,
		BookingDate:      today.AddDate(0, 0, -95),
		SlotTime:         "9:00 AM",
		Status:           StatusCompleted,
		MileageAtService: &lastMileage,
	}

	items, err := svc.MaintenanceSchedule(context.Background(), vehicleID, userID, nil, today)
	require.NoError(t, err)
	require.Len(t, items, len(catalog.All()))

	// Most urgent first: the overdue oil change.
	assert.Equal(t, catalog.ServiceOilChange, items[0].Service.Type)
	assert.Equal(t, maintenance.StatusOverdue, items[0].Verdict.Status)
	assert.True(t, items[0].Verdict.IsDue)
	assert.Equal(t, maintenance.StatusDueSoon, items[0].Verdict.Mileage.Status)

	// Services with no history are unknown and rank last.
	last := items[len(items)-1]
	assert.Equal(t, maintenance.StatusUnknown, last.Verdict.Status)

	// Ownership check.
	_, err = svc.MaintenanceSchedule(context.Background(), vehicleID, uuid.New(), nil, today)
	assert.ErrorIs(t, err, ErrNotVehicleOwner)
}

func TestAvailableSlotsService(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeLocker{})
	userID := repo.addUser()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		UserID:      userID,
		ServiceType: catalog.ServiceOilChange,
		Date:        date,
		SlotTime:    "10:30 AM",
	})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), date, catalog.ServiceOilChange)
	require.NoError(t, err)
	require.Len(t, slots, 5)
	for _, s := range slots {
		assert.Equal(t, s.Time == "10:30 AM", s.Taken)
	}
}
