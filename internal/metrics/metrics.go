package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CreditReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_credit_reservations_total",
			Help: "Total number of credit reservations",
		},
		[]string{"kind", "outcome"},
	)

	CreditReversalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_credit_reversals_total",
			Help: "Total number of reversed credit reservations",
		},
	)

	CreditsPurchasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_credits_purchased_total",
			Help: "Total number of credits purchased",
		},
	)

	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_total",
			Help: "Total number of billable sessions by kind and final sync status",
		},
		[]string{"kind", "status"},
	)

	VendorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_vendor_calls_total",
			Help: "Total number of conversational vendor API calls",
		},
		[]string{"operation", "outcome"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_webhook_events_total",
			Help: "Total number of vendor webhook notifications",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(kind, outcome string) {
	CreditReservationsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordReversal() {
	CreditReversalsTotal.Inc()
}

func RecordPurchase(credits int) {
	CreditsPurchasedTotal.Add(float64(credits))
}

func RecordSession(kind, status string) {
	SessionsTotal.WithLabelValues(kind, status).Inc()
}

func RecordVendorCall(operation, outcome string) {
	VendorCallsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordWebhookEvent(result string) {
	WebhookEventsTotal.WithLabelValues(result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
