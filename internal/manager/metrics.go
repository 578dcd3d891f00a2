package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	analysesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "manager",
		Name:      "analyses_total",
		Help:      "Frame analyses completed",
	})

	analysisFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "manager",
		Name:      "analysis_failures_total",
		Help:      "Frame analyses that failed or were skipped",
	})

	framesSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "manager",
		Name:      "frames_superseded_total",
		Help:      "Frames discarded because a newer frame replaced them",
	})

	sessionReinits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "visiond",
		Subsystem: "manager",
		Name:      "session_reinits_total",
		Help:      "Inference session reinitializations after failures",
	})
)

func init() {
	prometheus.MustRegister(analysesTotal, analysisFailures, framesSuperseded, sessionReinits)
}
