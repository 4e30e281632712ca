package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (booking_date, slot_time) WHERE status <> 'cancelled'.
const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	var mileage *int

	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Make,
		&v.Model,
		&v.Year,
		&mileage,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	v.Mileage = mileage
	return &v, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var vehicleID *uuid.UUID
	var notes *string
	var mileage *int

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&vehicleID,
		&b.ServiceType,
		&b.ServiceName,
		&b.BookingDate,
		&b.SlotTime,
		&b.Status,
		&notes,
		&mileage,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	b.VehicleID = vehicleID
	b.Notes = notes
	b.MileageAtService = mileage
	return &b, nil
}

const bookingColumns = `id, user_id, vehicle_id, service_type, service_name, booking_date, slot_time, status, notes, mileage_at_service, created_at, updated_at`

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) CreateUser(ctx context.Context, u *User) (*User, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, name, email, password_hash, role, created_at, updated_at
	`, id, u.Name, u.Email, u.PasswordHash, u.Role)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) CreateVehicle(ctx context.Context, v *Vehicle) (*Vehicle, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO vehicles (id, user_id, make, model, year, mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, user_id, make, model, year, mileage, created_at, updated_at
	`, id, v.UserID, v.Make, v.Model, v.Year, v.Mileage)

	return scanVehicle(row)
}

func (r *PgRepository) GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, make, model, year, mileage, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`, id)
	return scanVehicle(row)
}

func (r *PgRepository) ListVehiclesByUser(ctx context.Context, userID uuid.UUID) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, make, model, year, mileage, created_at, updated_at
		FROM vehicles
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

func (r *PgRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, make, model, year, mileage, created_at, updated_at
		FROM vehicles
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

func collectVehicles(rows pgx.Rows) ([]Vehicle, error) {
	defer rows.Close()

	var result []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (id, user_id, vehicle_id, service_type, service_name, booking_date, slot_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, now(), now())
		RETURNING `+bookingColumns+`
	`, id, b.UserID, b.VehicleID, b.ServiceType, b.ServiceName, b.BookingDate, b.SlotTime, b.Notes)

	created, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) ListBookingsForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE booking_date = $1
	`, date)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PgRepository) ListBookingsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PgRepository) ListBookingsByStatus(ctx context.Context, status Status, limit, offset int) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = $1
		ORDER BY booking_date, slot_time
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PgRepository) ListCompletedByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE vehicle_id = $1
		  AND status = 'completed'
		ORDER BY booking_date DESC
	`, vehicleID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PgRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE bookings
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+bookingColumns+`
	`, id, to, from)

	return scanBooking(row)
}

func (r *PgRepository) CompleteBooking(ctx context.Context, id uuid.UUID, mileageAtService *int) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'completed',
		    mileage_at_service = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status IN ('pending', 'approved')
		RETURNING `+bookingColumns+`
	`, id, mileageAtService)

	return scanBooking(row)
}

func (r *PgRepository) UpsertReminder(ctx context.Context, rem Reminder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminders (id, vehicle_id, service_type, urgency, due_date, due_mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (vehicle_id, service_type)
		DO UPDATE SET urgency = EXCLUDED.urgency,
		              due_date = EXCLUDED.due_date,
		              due_mileage = EXCLUDED.due_mileage,
		              updated_at = now()
	`, uuid.New(), rem.VehicleID, rem.ServiceType, rem.Urgency, rem.DueDate, rem.DueMileage)
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}

	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_events (event_type, booking_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.BookingID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
