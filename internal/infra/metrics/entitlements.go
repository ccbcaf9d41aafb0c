package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		entitlementsTotal,
		revenueTotal,
		ledgerEntriesTotal,
		agentsExpiredTotal,
		subscribedUsers,
	)
}

var (
	entitlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlements_granted_total",
			Help: "Entitlements granted by kind (subscription/agent-creation/agent-renewal/pay-per-view).",
		},
		[]string{"kind"},
	)

	revenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Monetary value of completed payments in UGX, by ledger kind.",
		},
		[]string{"kind"},
	)

	ledgerEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Transaction ledger entries appended, by status.",
		},
		[]string{"status"},
	)

	agentsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agents_expired_total",
			Help: "Agents flipped to expired by the expiry worker.",
		},
	)

	subscribedUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscribed_users",
			Help: "Users holding a live subscription, sampled by the expiry worker.",
		},
	)
)

func IncEntitlement(kind string) {
	entitlementsTotal.WithLabelValues(norm(kind)).Inc()
}

func AddRevenue(kind string, amount int64) {
	revenueTotal.WithLabelValues(norm(kind)).Add(float64(amount))
}

func IncLedgerEntry(status string) {
	ledgerEntriesTotal.WithLabelValues(norm(status)).Inc()
}

func AddAgentsExpired(n int) {
	agentsExpiredTotal.Add(float64(n))
}

func SetSubscribedUsers(n int) {
	subscribedUsers.Set(float64(n))
}
