package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking holds the engine's domain counters.
type Booking struct {
	Created     prometheus.Counter
	Rejected    *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	DaysWritten prometheus.Counter
	DaysFailed  prometheus.Counter
	StoreErrors *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

func NewBooking(reg prometheus.Registerer) *Booking {
	f := promauto.With(reg)
	return &Booking{
		Created: f.NewCounter(prometheus.CounterOpts{
			Name: "booking_created_total",
			Help: "Bookings stored in pending state.",
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_rejections_total",
			Help: "Requests rejected by validation, by reason.",
		}, []string{"reason"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions by target status and result.",
		}, []string{"to", "result"}),
		DaysWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "calendar_days_written_total",
			Help: "Calendar days written by admin bulk edits.",
		}),
		DaysFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "calendar_days_failed_total",
			Help: "Calendar days that failed to write and must be retried.",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_store_errors_total",
			Help: "Transient store failures by RPC method.",
		}, []string{"method"}),
		PanicsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "grpc_req_panics_recovered_total",
			Help: "Total number of gRPC requests recovered from internal panic.",
		}),
	}
}
