// Package metrics exposes prometheus instrumentation for the session
// lifecycle. The interesting signal is refresh behavior: with no single-flight
// guard, concurrent 401s each trigger their own refresh, and the counters make
// that redundancy observable.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Session counts request outcomes and token refresh activity.
type Session struct {
	RequestsTotal   *prometheus.CounterVec
	RefreshAttempts prometheus.Counter
	RefreshFailures prometheus.Counter
	RetriesTotal    prometheus.Counter
	ForcedLogouts   prometheus.Counter
}

// NewSession registers session metrics on reg and returns them.
func NewSession(reg prometheus.Registerer) *Session {
	m := &Session{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spellbook",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		RefreshAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spellbook",
			Subsystem: "session",
			Name:      "refresh_attempts_total",
			Help:      "Silent token refresh attempts.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spellbook",
			Subsystem: "session",
			Name:      "refresh_failures_total",
			Help:      "Token refresh attempts that failed terminally.",
		}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spellbook",
			Subsystem: "session",
			Name:      "request_retries_total",
			Help:      "Requests resent after a successful token refresh.",
		}),
		ForcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spellbook",
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared after terminal refresh failure.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RefreshAttempts, m.RefreshFailures, m.RetriesTotal, m.ForcedLogouts)
	}
	return m
}
