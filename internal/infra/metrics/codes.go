package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		codesImportedTotal,
		codesRejectedTotal,
		codesAssignedTotal,
		batchesDeletedTotal,
		codePoolSize,
	)
}

var (
	codesImportedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_codes_imported_total",
			Help: "Total number of access codes successfully imported.",
		},
	)

	codesRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_codes_rejected_total",
			Help: "Import rows rejected, by reason.",
		},
		[]string{"reason"}, // 'duplicate', 'missing_code'
	)

	codesAssignedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_codes_assigned_total",
			Help: "Total number of access codes assigned to members.",
		},
	)

	batchesDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "code_batches_deleted_total",
			Help: "Total number of code batches deleted.",
		},
	)

	codePoolSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "access_code_pool_size",
			Help: "Current number of access codes by state.",
		},
		[]string{"state"}, // 'total', 'assigned', 'used', 'available'
	)
)

func IncCodesImported(count int) {
	codesImportedTotal.Add(float64(count))
}

func IncCodesRejected(reason string, count int) {
	codesRejectedTotal.WithLabelValues(reason).Add(float64(count))
}

func IncCodesAssigned(count int) {
	codesAssignedTotal.Add(float64(count))
}

func IncBatchesDeleted() {
	batchesDeletedTotal.Inc()
}

func SetCodePool(total, assigned, used int) {
	codePoolSize.WithLabelValues("total").Set(float64(total))
	codePoolSize.WithLabelValues("assigned").Set(float64(assigned))
	codePoolSize.WithLabelValues("used").Set(float64(used))
	codePoolSize.WithLabelValues("available").Set(float64(total - assigned))
}
