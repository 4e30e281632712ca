package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dawsdoon/AutoCare/internal/auth"
	"github.com/dawsdoon/AutoCare/internal/booking"
	"github.com/dawsdoon/AutoCare/internal/catalog"
	"github.com/dawsdoon/AutoCare/internal/db"
	"github.com/dawsdoon/AutoCare/internal/logger"
)

const seedPassword = "password123"

func main() {
	log := logger.New(os.Getenv("ENV"), "seed")
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	users, err := seedUsers(context.Background(), pool, log, 50)
	if err != nil {
		log.Fatal().Err(err).Msg("seed users")
	}
	vehicles, err := seedVehicles(context.Background(), pool, log, users)
	if err != nil {
		log.Fatal().Err(err).Msg("seed vehicles")
	}
	if err := seedBookings(context.Background(), pool, log, vehicles); err != nil {
		log.Fatal().Err(err).Msg("seed bookings")
	}

	log.Info().Msg("seed complete")
}

// seedUsers inserts one admin plus count customers. Every account gets the
// same known password so seeded logins work out of the box.
func seedUsers(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, count int) ([]booking.User, error) {
	log.Info().Int("count", count).Msg("seeding users")

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	users := make([]booking.User, 0, count+1)

	admin := booking.User{
		ID:    uuid.New(),
		Name:  "Workshop Admin",
		Email: "admin@autocare.local",
		Role:  booking.RoleAdmin,
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, admin.ID, admin.Name, admin.Email, hash, admin.Role); err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		u := booking.User{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Role:  booking.RoleCustomer,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, u.ID, u.Name, u.Email, hash, u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("users seeded")
	return users, nil
}

// seedVehicles gives each customer one or two vehicles with a plausible
// odometer reading for its age.
func seedVehicles(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, users []booking.User) ([]booking.Vehicle, error) {
	log.Info().Msg("seeding vehicles")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	vehicles := make([]booking.Vehicle, 0, len(users)*2)

	for _, u := range users {
		if u.Role != booking.RoleCustomer {
			continue
		}

		n := gofakeit.Number(1, 2)
		for i := 0; i < n; i++ {
			year := gofakeit.Number(2008, 2025)
			mileage := (2026 - year) * gofakeit.Number(6000, 15000)

			v := booking.Vehicle{
				ID:      uuid.New(),
				UserID:  u.ID,
				Make:    gofakeit.CarMaker(),
				Model:   gofakeit.CarModel(),
				Year:    year,
				Mileage: &mileage,
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO vehicles (id, user_id, make, model, year, mileage, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			`, v.ID, v.UserID, v.Make, v.Model, v.Year, v.Mileage); err != nil {
				return nil, err
			}
			vehicles = append(vehicles, v)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Int("count", len(vehicles)).Msg("vehicles seeded")
	return vehicles, nil
}

// seedBookings writes a completed service history for most vehicles so the
// maintenance schedule and reminder worker have data to work from, plus a
// handful of upcoming pending bookings. Every booking gets its own date so
// the slot uniqueness index never trips during seeding.
func seedBookings(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, vehicles []booking.Vehicle) error {
	log.Info().Msg("seeding bookings")

	const batchSize = 500

	services := catalog.All()
	now := time.Now()
	pastDay := 30
	futureDay := 0
	inserted := 0

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range vehicles {
		// Skip some vehicles entirely so the schedule endpoint also shows
		// the no-history path.
		if gofakeit.Number(0, 9) == 0 {
			continue
		}

		iv := services[gofakeit.Number(0, len(services)-1)]
		pastDay += gofakeit.Number(1, 3)
		date := now.AddDate(0, 0, -pastDay)

		var mileage *int
		if v.Mileage != nil {
			m := *v.Mileage - gofakeit.Number(500, 8000)
			if m < 0 {
				m = 0
			}
			mileage = &m
		}

		menu := catalog.SlotMenu(iv.Type)
		slot := menu[gofakeit.Number(0, len(menu)-1)]

		if _, err := tx.Exec(ctx, `
			INSERT INTO bookings (id, user_id, vehicle_id, service_type, service_name, booking_date, slot_time, status, notes, mileage_at_service, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'completed', '', $8, now(), now())
		`, uuid.New(), v.UserID, v.ID, iv.Type, iv.DisplayName, date, slot, mileage); err != nil {
			return err
		}
		inserted++

		// A pending booking in the near future for roughly a quarter of
		// vehicles.
		if gofakeit.Number(0, 3) == 0 {
			futureDay++
			future := now.AddDate(0, 0, futureDay)
			next := services[gofakeit.Number(0, len(services)-1)]
			nextMenu := catalog.SlotMenu(next.Type)

			if _, err := tx.Exec(ctx, `
				INSERT INTO bookings (id, user_id, vehicle_id, service_type, service_name, booking_date, slot_time, status, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, now(), now())
			`, uuid.New(), v.UserID, v.ID, next.Type, next.DisplayName, future, nextMenu[0], gofakeit.Sentence(6)); err != nil {
				return err
			}
			inserted++
		}

		if inserted >= batchSize {
			if err := tx.Commit(ctx); err != nil {
				return err
			}
			tx, err = pool.Begin(ctx)
			if err != nil {
				return err
			}
			inserted = 0
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("bookings seeded")
	return nil
}
