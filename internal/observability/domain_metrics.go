package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptboard_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome (ok, empty, error).",
		},
		[]string{"outcome"},
	)
	pipelineStageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptboard_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage latency by stage name.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	chartCategoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptboard_chart_categories_total",
			Help: "Total number of chart categories served after precondition resolution.",
		},
		[]string{"category"},
	)
	chartFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptboard_chart_fallbacks_total",
			Help: "Total number of runs where an unmet rendering precondition fell back to a raw table.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		pipelineRunsTotal,
		pipelineStageDurationSeconds,
		chartCategoriesTotal,
		chartFallbacksTotal,
	)
}

func ObservePipelineRun(outcome string) {
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

func ObservePipelineStage(stage string, elapsed time.Duration) {
	pipelineStageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveChartCategory(category string, fellBack bool) {
	chartCategoriesTotal.WithLabelValues(category).Inc()
	if fellBack {
		chartFallbacksTotal.Inc()
	}
}
