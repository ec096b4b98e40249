// Package metrics collects node metrics with Prometheus and serves them
// together with a liveness probe.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the ledger services report to.
type Recorder interface {
	RecordSubmission(result string, latency time.Duration)
	RecordApplied(status, reason string)
	RecordBlock(number uint64, txs int)
	RecordProfileRead()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	submitted        *prometheus.CounterVec
	applied          *prometheus.CounterVec
	blocksSealed     prometheus.Counter
	blockHeight      prometheus.Gauge
	blockTxs         prometheus.Histogram
	profileReads     prometheus.Counter
	admissionLatency prometheus.Histogram
}

// NewCollector registers the node metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chainprofile_transactions_submitted_total",
			Help: "Transactions received by SendTransaction, by admission result.",
		}, []string{"result"}),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chainprofile_transactions_applied_total",
			Help: "Transactions applied in sealed blocks, by receipt status and reason.",
		}, []string{"status", "reason"}),
		blocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainprofile_blocks_sealed_total",
			Help: "Blocks sealed by the producer.",
		}),
		blockHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainprofile_block_height",
			Help: "Number of the latest sealed block.",
		}),
		blockTxs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainprofile_block_transactions",
			Help:    "Transactions per sealed block.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9),
		}),
		profileReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainprofile_profile_reads_total",
			Help: "ReadProfile calls served.",
		}),
		admissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainprofile_admission_latency_seconds",
			Help:    "Time spent on SendTransaction admission checks.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.submitted,
		c.applied,
		c.blocksSealed,
		c.blockHeight,
		c.blockTxs,
		c.profileReads,
		c.admissionLatency,
	)

	return c
}

func (c *Collector) RecordSubmission(result string, latency time.Duration) {
	c.submitted.WithLabelValues(result).Inc()
	c.admissionLatency.Observe(latency.Seconds())
}

func (c *Collector) RecordApplied(status, reason string) {
	c.applied.WithLabelValues(status, reason).Inc()
}

func (c *Collector) RecordBlock(number uint64, txs int) {
	c.blocksSealed.Inc()
	c.blockHeight.Set(float64(number))
	c.blockTxs.Observe(float64(txs))
}

func (c *Collector) RecordProfileRead() {
	c.profileReads.Inc()
}

// Nop discards measurements.
type Nop struct{}

func (Nop) RecordSubmission(string, time.Duration) {}
func (Nop) RecordApplied(string, string)           {}
func (Nop) RecordBlock(uint64, int)                {}
func (Nop) RecordProfileRead()                     {}
