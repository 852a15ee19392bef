package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted by intake.",
		},
	)

	bookingFilesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "booking_files_rejected_total",
			Help:      "Attachment uploads recorded without a path.",
		},
		[]string{"reason"},
	)

	installEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "install_events_total",
			Help:      "PWA install events by platform.",
		},
		[]string{"platform"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, bookingFilesRejected, installEvents)
	})
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingFileRejected(reason string) {
	bookingFilesRejected.WithLabelValues(reason).Inc()
}

func IncInstallEvent(platform string) {
	installEvents.WithLabelValues(platform).Inc()
}
