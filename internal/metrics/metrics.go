package metrics

import "github.com/prometheus/client_golang/prometheus"

// PlatformMetrics exposes counters for booking, chat and dashboard activity.
type PlatformMetrics struct {
	bookingsConfirmed prometheus.Counter
	bookingErrors     *prometheus.CounterVec
	chatReplies       *prometheus.CounterVec
	snapshots         prometheus.Counter
	activeSessions    *prometheus.GaugeVec
}

func NewPlatformMetrics(reg prometheus.Registerer) *PlatformMetrics {
	m := &PlatformMetrics{
		bookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peersupport",
			Subsystem: "booking",
			Name:      "confirmed_total",
			Help:      "Total confirmed bookings",
		}),
		bookingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peersupport",
			Subsystem: "booking",
			Name:      "errors_total",
			Help:      "Booking flow failures by reason",
		}, []string{"reason"}),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peersupport",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Simulated chat replies by category",
		}, []string{"category"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peersupport",
			Subsystem: "analytics",
			Name:      "snapshots_total",
			Help:      "Analytics snapshots generated",
		}),
		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "peersupport",
			Subsystem: "session",
			Name:      "active",
			Help:      "Mounted views by kind",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsConfirmed, m.bookingErrors, m.chatReplies, m.snapshots, m.activeSessions)
	return m
}

func (m *PlatformMetrics) BookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *PlatformMetrics) BookingFailed(reason string) {
	if m == nil {
		return
	}
	m.bookingErrors.WithLabelValues(reason).Inc()
}

func (m *PlatformMetrics) ReplySent(category string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(category).Inc()
}

func (m *PlatformMetrics) SnapshotGenerated() {
	if m == nil {
		return
	}
	m.snapshots.Inc()
}

func (m *PlatformMetrics) SetActiveSessions(kind string, n int) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(kind).Set(float64(n))
}
