package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by admission class and status code
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"class", "status"},
	)

	// EnvelopeOps counts wallet envelope operations by op and status
	EnvelopeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_wallet_envelope_ops_total",
			Help: "Total number of wallet envelope operations",
		},
		[]string{"op", "status"},
	)

	// HandleLookups counts handle resolutions by outcome
	HandleLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_handle_lookups_total",
			Help: "Total number of handle resolutions",
		},
		[]string{"outcome"},
	)

	// HandleChecks counts availability checks by reason ("" means available)
	HandleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_handle_checks_total",
			Help: "Total number of handle availability checks",
		},
		[]string{"reason"},
	)

	// PasskeyVerifications counts passkey assertion verifications by status
	PasskeyVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_passkey_verifications_total",
			Help: "Total number of passkey assertion verifications",
		},
		[]string{"status"},
	)

	// PasskeyChallenges counts issued passkey challenges
	PasskeyChallenges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yuki_passkey_challenges_total",
			Help: "Total number of passkey challenges issued",
		},
	)

	// ContactOps counts contact list operations by op and status
	ContactOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_contact_ops_total",
			Help: "Total number of contact operations",
		},
		[]string{"op", "status"},
	)

	// UploadBytes tracks accepted upload sizes by kind
	UploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yuki_upload_bytes",
			Help:    "Size of accepted profile image uploads",
			Buckets: []float64{16384, 65536, 262144, 1048576, 4194304, 8388608},
		},
		[]string{"kind"},
	)

	// OnrampQuotes counts onramp quote requests by status
	OnrampQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuki_onramp_quotes_total",
			Help: "Total number of onramp quote requests",
		},
		[]string{"status"},
	)

	// SessionsIssued counts issued session tokens
	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yuki_sessions_issued_total",
			Help: "Total number of session tokens issued",
		},
	)
)
