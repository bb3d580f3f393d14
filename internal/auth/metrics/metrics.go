// Package metrics holds the Prometheus instruments for the auth domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all auth counters. Registered once at wiring time.
type Metrics struct {
	CodesIssued     prometheus.Counter
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec
	TokenRefreshes  *prometheus.CounterVec
}

// New creates and registers all auth metrics.
func New() *Metrics {
	return &Metrics{
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "authgate_verification_codes_issued_total",
			Help: "Total number of verification codes issued",
		}),
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "authgate_users_registered_total",
			Help: "Total number of users registered in the system",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		TokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_token_refreshes_total",
			Help: "Total number of token refresh attempts by outcome",
		}, []string{"outcome"}),
	}
}
