package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// BookingMetrics counts state transitions and ledger appends.
type BookingMetrics struct {
	transitions   *prometheus.CounterVec
	ledgerAppends *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Booking state transition attempts by from/to state and outcome.",
	}, []string{"from", "to", "outcome"})
	ledgerAppends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_ledger_appends_total",
		Help: "Ledger entries appended by event kind.",
	}, []string{"kind"})
	reg.MustRegister(transitions, ledgerAppends)
	return &BookingMetrics{
		transitions:   transitions,
		ledgerAppends: ledgerAppends,
	}
}

// ObserveTransition records one transition attempt.
func (m *BookingMetrics) ObserveTransition(from, to, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, outcome).Inc()
}

// ObserveLedgerAppend records one appended ledger entry.
func (m *BookingMetrics) ObserveLedgerAppend(kind string) {
	if m == nil || m.ledgerAppends == nil {
		return
	}
	m.ledgerAppends.WithLabelValues(kind).Inc()
}
