// Package metrics exposes the node's Prometheus collectors.
package metrics

import (
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mtoken"

var (
	// Registry holds the node's collectors.
	Registry = prometheus.NewRegistry()

	runnerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "runs_total",
			Help:      "Total number of service runs.",
		},
		[]string{"service", "healthy"},
	)

	runnerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "run_duration_seconds",
			Help:      "Duration of service runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"service"},
	)

	mintRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "requests_total",
			Help:      "Mint requests handled by the executors, by outcome.",
		},
		[]string{"chain_id", "outcome"},
	)

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relayer",
			Name:      "messages_total",
			Help:      "Cross-chain messages handled by the relayer, by outcome.",
		},
		[]string{"dst_chain_id", "outcome"},
	)

	reserve = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "amount",
			Help:      "Last sampled reserve amounts.",
		},
		[]string{"kind"},
	)

	reserveAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "available",
			Help:      "1 when a fresh attested reserve could be read, 0 otherwise.",
		},
	)
)

func init() {
	Registry.MustRegister(
		runnerRuns,
		runnerDuration,
		mintRequests,
		messages,
		reserve,
		reserveAvailable,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordRun(service string, duration time.Duration, healthy bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	result := "false"
	if healthy {
		result = "true"
	}
	runnerRuns.WithLabelValues(service, result).Inc()
	runnerDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordMintRequest(chainID string, outcome string) {
	mintRequests.WithLabelValues(chainID, outcome).Inc()
}

func RecordMessage(dstChainID string, outcome string) {
	messages.WithLabelValues(dstChainID, outcome).Inc()
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// SetReserve publishes a reserve sample. attested is nil when no fresh
// reading was available.
func SetReserve(attested, used *big.Int) {
	if used == nil {
		used = new(big.Int)
	}
	reserve.WithLabelValues("used").Set(toFloat(used))
	if attested == nil {
		reserveAvailable.Set(0)
		return
	}
	reserveAvailable.Set(1)
	reserve.WithLabelValues("attested").Set(toFloat(attested))
	reserve.WithLabelValues("headroom").Set(toFloat(new(big.Int).Sub(attested, used)))
}
