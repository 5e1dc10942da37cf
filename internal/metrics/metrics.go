// Package metrics exposes prometheus instrumentation for document
// processing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DocumentsProcessed counts pipeline invocations by entry point
	// (mode: single, capture, batch) and outcome (status: ok, error).
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocrflow_documents_processed_total",
		Help: "Documents run through the OCR pipeline, by mode and status.",
	}, []string{"mode", "status"})

	// StageFailures counts pipeline failures by the stage that failed.
	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocrflow_pipeline_stage_failures_total",
		Help: "Pipeline failures by stage (staging, upload, sign, ocr).",
	}, []string{"stage"})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOutcome tallies one pipeline invocation.
func RecordOutcome(mode string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DocumentsProcessed.WithLabelValues(mode, status).Inc()
}
