// Package metrics defines the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the gateway's collectors with their registry.
type Metrics struct {
	Registry *prometheus.Registry

	ChallengesIssued prometheus.Counter
	LoginSuccesses   prometheus.Counter
	LoginFailures    prometheus.Counter
	NoncesEvicted    prometheus.Counter
	DirectoryWrites  *prometheus.CounterVec
	DirectoryLookups prometheus.Counter
}

// New creates a fresh registry with all gateway collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_challenges_issued_total",
			Help: "Authentication challenges issued.",
		}),
		LoginSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_logins_total",
			Help: "Successful wallet logins.",
		}),
		LoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_login_failures_total",
			Help: "Failed wallet login attempts.",
		}),
		NoncesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_nonces_evicted_total",
			Help: "Challenges removed by the nonce store's prune pass.",
		}),
		DirectoryWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletgate_directory_writes_total",
			Help: "Delegation directory write instructions, by operation.",
		}, []string{"op"}),
		DirectoryLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_directory_lookups_total",
			Help: "Delegation directory lookups.",
		}),
	}
}
