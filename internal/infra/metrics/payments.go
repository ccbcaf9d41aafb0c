package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		depositsTotal,
		withdrawalsTotal,
		pollAttemptsTotal,
		pollOutcomesTotal,
	)
}

var (
	depositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_deposits_total",
			Help: "Deposit requests by outcome (initiated/rejected).",
		},
		[]string{"outcome"},
	)

	withdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_withdrawals_total",
			Help: "Withdrawal requests by outcome (sent/rejected).",
		},
		[]string{"outcome"},
	)

	pollAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_poll_attempts_total",
			Help: "Status poll attempts by observed provider status (or error).",
		},
		[]string{"status"},
	)

	pollOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_poll_outcomes_total",
			Help: "Terminal poll resolutions (success/failed/timeout/cancelled).",
		},
		[]string{"outcome"},
	)
)

func IncDeposit(outcome string) {
	depositsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncWithdrawal(outcome string) {
	withdrawalsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncPollAttempt(status string) {
	pollAttemptsTotal.WithLabelValues(norm(status)).Inc()
}

func IncPollOutcome(outcome string) {
	pollOutcomesTotal.WithLabelValues(norm(outcome)).Inc()
}
