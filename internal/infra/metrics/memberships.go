package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		membershipsExpiredTotal,
		membershipRemindersTotal,
		membershipsTotal,
	)
}

var (
	membershipsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memberships_expired_total",
			Help: "Total number of memberships deactivated by the expiry worker.",
		},
	)

	membershipRemindersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_reminders_total",
			Help: "Total number of renewal reminder mails queued.",
		},
	)

	membershipsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "memberships_total",
			Help: "Current number of memberships by state.",
		},
		[]string{"state"}, // 'active', 'expiring', 'expired'
	)
)

func IncMembershipsExpired(count int) {
	membershipsExpiredTotal.Add(float64(count))
}

func IncMembershipReminders(count int) {
	membershipRemindersTotal.Add(float64(count))
}

func SetMembershipsTotal(active, expiring, expired int) {
	membershipsTotal.WithLabelValues("active").Set(float64(active))
	membershipsTotal.WithLabelValues("expiring").Set(float64(expiring))
	membershipsTotal.WithLabelValues("expired").Set(float64(expired))
}
