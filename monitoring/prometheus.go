package monitoring

import (
	"net/http"
	"sync"

	"github.com/mezonai/pohledger/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	pohHeight         prometheus.Gauge
	pendingItems      prometheus.Gauge
	admittedTxCount   prometheus.Counter
	rejectedTxCount   *prometheus.CounterVec
	airdropCount      prometheus.Counter
	entriesClosed     prometheus.Counter
	slotsClosed       prometheus.Counter
	txInEntry         prometheus.Histogram
	ingestCount       *prometheus.CounterVec
	entriesReplayed   prometheus.Counter
	divergenceCount   prometheus.Counter
	panicCount        prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pohledger_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		pohHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pohledger_poh_height",
				Help: "Current PoH clock height",
			},
		),
		pendingItems: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pohledger_pending_items",
				Help: "Admitted transactions and system events waiting for the next entry",
			},
		),
		admittedTxCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_admitted_tx_count",
				Help: "The total number of admitted transactions",
			},
		),
		rejectedTxCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pohledger_rejected_tx_count",
				Help: "The total number of rejected transactions",
			},
			[]string{"reason"},
		),
		airdropCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_airdrop_count",
				Help: "The total number of airdrops recorded",
			},
		),
		entriesClosed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_entries_closed_count",
				Help: "Entries closed by the leader assembler",
			},
		),
		slotsClosed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_slots_closed_count",
				Help: "Slots closed by the leader assembler",
			},
		),
		txInEntry: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pohledger_tx_in_entry",
				Help:    "Number of tx in a closed entry",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		ingestCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pohledger_ingest_count",
				Help: "Ingest calls by outcome",
			},
			[]string{"result"},
		),
		entriesReplayed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_entries_replayed_count",
				Help: "Entries replayed by the validator",
			},
		),
		divergenceCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_divergence_count",
				Help: "Replays whose bank hash differed from the one reported by the leader",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pohledger_panic_count",
				Help: "Recovered panics in background goroutines",
			},
		),
	}
}

var (
	nodeMetrics *nodePromMetrics
	initOnce    sync.Once
)

// InitMetrics registers node metrics once; later calls are no-ops.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *nodePromMetrics {
	InitMetrics()
	return nodeMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	logx.Info("MONITORING", "Registering prometheus metrics")
	return promhttp.Handler()
}

func SetPohHeight(height uint64) {
	metrics().pohHeight.Set(float64(height))
}

func SetPendingItems(n int) {
	metrics().pendingItems.Set(float64(n))
}

func IncreaseAdmittedTxCount() {
	metrics().admittedTxCount.Inc()
}

func RecordRejectedTx(reason string) {
	metrics().rejectedTxCount.With(prometheus.Labels{
		"reason": reason,
	}).Inc()
}

// RejectedTxCount reads the counter for reason; used by tests and the status view.
func RejectedTxCount(reason string) prometheus.Counter {
	return metrics().rejectedTxCount.With(prometheus.Labels{"reason": reason})
}

func IncreaseAirdropCount() {
	metrics().airdropCount.Inc()
}

func RecordEntryClosed(txCount int) {
	metrics().entriesClosed.Inc()
	metrics().txInEntry.Observe(float64(txCount))
}

func IncreaseSlotsClosed() {
	metrics().slotsClosed.Inc()
}

func RecordIngest(result string, entries int) {
	metrics().ingestCount.With(prometheus.Labels{
		"result": result,
	}).Inc()
	metrics().entriesReplayed.Add(float64(entries))
}

func IncreaseDivergenceCount() {
	metrics().divergenceCount.Inc()
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
