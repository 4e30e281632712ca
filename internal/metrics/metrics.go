package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	BookingsCreated    prometheus.Counter
	BookingConflicts   prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	RemindersGenerated prometheus.Counter
}

// New registers the collectors on the provided registerer. If reg is nil,
// the default registerer is used.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "autocare_bookings_created_total",
			Help: "Total number of bookings created",
		}),
		BookingConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "autocare_booking_conflicts_total",
			Help: "Total number of booking attempts rejected because the slot was taken",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autocare_booking_status_transitions_total",
			Help: "Total number of booking status transitions",
		}, []string{"to"}),
		RemindersGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "autocare_reminders_generated_total",
			Help: "Total number of maintenance reminders written by the worker",
		}),
	}
}
