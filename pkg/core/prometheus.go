package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric used in monitoring service.
var (
	blockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current index of processed block",
			Name:      "current_block_height",
			Namespace: "localnet",
		},
	)

	mempoolUnsortedTx = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Mempool unsorted transactions",
			Name:      "mempool_unsorted_tx",
			Namespace: "localnet",
		},
	)
)

func init() {
	prometheus.MustRegister(
		blockHeight,
		mempoolUnsortedTx,
	)
}

func updateBlockHeightMetric(height uint32) {
	blockHeight.Set(float64(height))
}

func updateMempoolMetrics(unsortedTxnLen int) {
	mempoolUnsortedTx.Set(float64(unsortedTxnLen))
}
