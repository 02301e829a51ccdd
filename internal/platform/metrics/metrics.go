package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the workflow engine.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	ApplicationsApproved  prometheus.Counter
	ApplicationsRejected  prometheus.Counter
	ApplicationsBooked    prometheus.Counter
	WithdrawalsRequested  prometheus.Counter
	WithdrawalsApproved   prometheus.Counter
	RegistrationsCreated  prometheus.Counter
	RegistrationsApproved prometheus.Counter
	EnquiriesSubmitted    prometheus.Counter
	LoginFailures         prometheus.Counter
}

// New creates and registers all Prometheus metrics on the given registerer.
// Pass prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: "btoflow",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		ApplicationsSubmitted: counter("applications_submitted_total", "Applications accepted by the eligibility checker."),
		ApplicationsApproved:  counter("applications_approved_total", "Manager approvals (PENDING to SUCCESSFUL)."),
		ApplicationsRejected:  counter("applications_rejected_total", "Manager rejections (PENDING to UNSUCCESSFUL)."),
		ApplicationsBooked:    counter("applications_booked_total", "Officer bookings (SUCCESSFUL to BOOKED)."),
		WithdrawalsRequested:  counter("withdrawals_requested_total", "Withdrawal requests raised by applicants."),
		WithdrawalsApproved:   counter("withdrawals_approved_total", "Withdrawal requests approved by managers."),
		RegistrationsCreated:  counter("officer_registrations_total", "Officer registration requests."),
		RegistrationsApproved: counter("officer_registrations_approved_total", "Officer registrations approved by managers."),
		EnquiriesSubmitted:    counter("enquiries_submitted_total", "Enquiries submitted by applicants."),
		LoginFailures:         counter("login_failures_total", "Failed login attempts."),
	}
}
