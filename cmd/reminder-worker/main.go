package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dawsdoon/AutoCare/internal/booking"
	"github.com/dawsdoon/AutoCare/internal/config"
	"github.com/dawsdoon/AutoCare/internal/db"
	"github.com/dawsdoon/AutoCare/internal/logger"
	"github.com/dawsdoon/AutoCare/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log := logger.New(cfg.Env, "reminder-worker")
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("reminder-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	w := &worker{
		repo:    booking.NewPgRepository(pgPool),
		metrics: metrics.New(nil),
		log:     log,
	}

	// Expose the worker's counters; the api-server has its own /metrics.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", metricsSrv.Addr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	w.runOnce(rootCtx)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping reminder worker")
			break loop
		case <-ticker.C:
			w.runOnce(rootCtx)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown failed")
	}
}

type worker struct {
	repo    booking.Repository
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func (w *worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()
	generated, err := w.scanVehicles(runCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("reminder run error")
		return
	}
	w.log.Info().
		Int("reminders", generated).
		Dur("took", time.Since(start)).
		Msg("reminder run complete")
}

// scanVehicles evaluates every vehicle's maintenance schedule and writes a
// reminder for each service that is currently due.
func (w *worker) scanVehicles(ctx context.Context) (int, error) {
	vehicles, err := w.repo.ListVehicles(ctx)
	if err != nil {
		return 0, err
	}

	today := time.Now()
	generated := 0

	for i := range vehicles {
		v := &vehicles[i]

		history, err := w.repo.ListCompletedByVehicle(ctx, v.ID)
		if err != nil {
			w.log.Error().Err(err).Str("vehicle_id", v.ID.String()).Msg("load service history")
			continue
		}

		for _, item := range booking.BuildSchedule(history, v.Mileage, today) {
			if !item.Verdict.IsDue {
				continue
			}

			rem := booking.Reminder{
				VehicleID:   v.ID,
				ServiceType: item.Service.Type,
				Urgency:     string(item.Verdict.Status),
				DueDate:     item.Verdict.Time.DueDate,
				DueMileage:  item.Verdict.Mileage.DueMileage,
			}
			if err := w.repo.UpsertReminder(ctx, rem); err != nil {
				w.log.Error().Err(err).
					Str("vehicle_id", v.ID.String()).
					Str("service", string(item.Service.Type)).
					Msg("upsert reminder")
				continue
			}

			w.metrics.RemindersGenerated.Inc()
			generated++
		}
	}

	return generated, nil
}
