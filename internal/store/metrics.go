package store

import "github.com/prometheus/client_golang/prometheus"

var (
	downloadsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "store",
		Name:      "downloads_started_total",
		Help:      "Artifact downloads that reached the network",
	})

	downloadsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "store",
		Name:      "downloads_completed_total",
		Help:      "Artifact downloads that completed successfully",
	})

	downloadsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "store",
		Name:      "downloads_failed_total",
		Help:      "Artifact downloads that failed",
	})

	downloadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "store",
		Name:      "download_bytes_total",
		Help:      "Bytes fetched for completed artifact downloads",
	})
)

func init() {
	prometheus.MustRegister(downloadsStarted, downloadsCompleted, downloadsFailed, downloadBytes)
}
