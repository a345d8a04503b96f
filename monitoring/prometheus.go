package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mezonai/multisig/logx"
)

type TxRejectedReason string

var (
	TxInvalidSignature TxRejectedReason = "invalid_signature"
	TxDuplicated       TxRejectedReason = "duplicated"
	TxProgramError     TxRejectedReason = "program_error"
	TxHostError        TxRejectedReason = "host_error"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

type ledgerPromMetrics struct {
	upUnixSeconds     prometheus.Gauge
	instructionsTotal *prometheus.CounterVec
	executeSeconds    prometheus.Histogram
	rejectedTxCount   *prometheus.CounterVec
	committedSequence prometheus.Gauge
	panicCount        prometheus.Counter
	rpcRequestsTotal  *prometheus.CounterVec
	hostCPUPercent    prometheus.Gauge
	hostMemPercent    prometheus.Gauge
	hostDiskPercent   prometheus.Gauge
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		upUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "multisig_up_timestamp_unix_seconds",
				Help: "Unix timestamp at which the ledger started",
			},
		),
		instructionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multisig_instructions_total",
				Help: "Program instructions executed, by opcode and result",
			},
			[]string{"opcode", "result"},
		),
		executeSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "multisig_execute_seconds",
				Help:    "Wall time spent executing one transaction",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
		),
		rejectedTxCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multisig_rejected_tx_count",
				Help: "The total number of rejected transactions",
			},
			[]string{"reason"},
		),
		committedSequence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "multisig_committed_sequence",
				Help: "Sequence number of the last committed transaction",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "multisig_panic_count",
				Help: "Recovered panics in background goroutines",
			},
		),
		rpcRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multisig_rpc_requests_total",
				Help: "API requests served, by method and result",
			},
			[]string{"method", "result"},
		),
		hostCPUPercent: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "multisig_host_cpu_percent",
				Help: "Host CPU utilisation at the last sample",
			},
		),
		hostMemPercent: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "multisig_host_memory_used_percent",
				Help: "Host memory in use at the last sample",
			},
		),
		hostDiskPercent: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "multisig_host_disk_used_percent",
				Help: "Disk usage of the filesystem holding the data directory",
			},
		),
	}
}

var (
	metricsOnce sync.Once
	nodeMetrics *ledgerPromMetrics
)

// InitMetrics registers the collectors once; later calls are no-ops.
func InitMetrics() {
	metricsOnce.Do(func() {
		nodeMetrics = newLedgerPromMetrics()
		nodeMetrics.upUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *ledgerPromMetrics {
	InitMetrics()
	return nodeMetrics
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

// NewMetricsServer returns a server exposing /metrics on addr. The caller
// runs ListenAndServe.
func NewMetricsServer(addr string) *http.Server {
	InitMetrics()
	mux := http.NewServeMux()
	RegisterMetrics(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func RecordInstruction(opcode, result string) {
	metrics().instructionsTotal.With(prometheus.Labels{
		"opcode": opcode,
		"result": result,
	}).Inc()
}

func RecordExecuteTime(duration time.Duration) {
	metrics().executeSeconds.Observe(duration.Seconds())
}

func RecordRejectedTx(reason TxRejectedReason) {
	metrics().rejectedTxCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func SetCommittedSequence(seq uint64) {
	metrics().committedSequence.Set(float64(seq))
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}

func RecordRPCRequest(method, result string) {
	metrics().rpcRequestsTotal.With(prometheus.Labels{
		"method": method,
		"result": result,
	}).Inc()
}
