package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application-level collectors, registered on the default registry that the
// /metrics server exposes.
var (
	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectqr_redirects_total",
		Help: "Redirects served, labelled by outcome.",
	}, []string{"outcome"})

	ScansRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectqr_scans_recorded_total",
		Help: "Scan events persisted by the recorder.",
	})

	ScanRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectqr_scan_record_failures_total",
		Help: "Scan events that could not be persisted.",
	})

	SafetyVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectqr_safety_verdicts_total",
		Help: "URL safety evaluations, labelled safe or unsafe.",
	}, []string{"verdict"})

	ThreatCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectqr_threat_cache_total",
		Help: "Threat-list cache lookups, labelled hit or miss.",
	}, []string{"result"})
)
