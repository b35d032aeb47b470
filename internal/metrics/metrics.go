package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealhive"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Business metrics
var (
	// Redemptions counts redemption attempts by outcome and path
	// (owned wallet flip vs direct unowned redemption).
	Redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Total number of redemption attempts by result and path",
		},
		[]string{"result", "path"},
	)

	EntitlementChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_checks_total",
			Help:      "Total number of monthly limit checks by outcome",
		},
		[]string{"allowed"},
	)

	WalletClaims = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_claims_total",
			Help:      "Total number of deals claimed into wallets",
		},
	)

	WalletReleases = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_releases_total",
			Help:      "Total number of wallet claims released",
		},
	)
)
