package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pvlab_chat_duration_seconds",
			Help:    "Assistant operation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvlab_chat_total",
			Help: "Total assistant operations processed",
		},
		[]string{"operation", "status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvlab_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"direction"},
	)

	ReportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pvlab_report_generation_seconds",
			Help:    "Report generation duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	ReportRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvlab_report_renders_total",
			Help: "Report output files produced per format and outcome",
		},
		[]string{"format", "outcome"},
	)

	QualityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pvlab_report_quality_score",
			Help:    "Overall quality scores of checked reports",
			Buckets: []float64{0, 20, 40, 60, 70, 80, 90, 95, 100},
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pvlab_active_sessions",
			Help: "Number of live assistant sessions",
		},
	)

	IntentDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvlab_intent_detected_total",
			Help: "Detected intents by name",
		},
		[]string{"intent"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pvlab_cache_hits_total",
			Help: "Total response cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pvlab_cache_misses_total",
			Help: "Total response cache misses",
		},
	)
)

func Init() {
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(ChatTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(ReportDuration)
	prometheus.MustRegister(ReportRenders)
	prometheus.MustRegister(QualityScore)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(IntentDetected)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Helpers used by packages that should not depend on prometheus directly.

func RecordReportRender(format, outcome string) {
	ReportRenders.WithLabelValues(format, outcome).Inc()
}

func ObserveReportDuration(seconds float64) {
	ReportDuration.Observe(seconds)
}

func ObserveQualityScore(score float64) {
	QualityScore.Observe(score)
}

func RecordTokens(input, output int) {
	LLMTokensUsed.WithLabelValues("input").Add(float64(input))
	LLMTokensUsed.WithLabelValues("output").Add(float64(output))
}

func RecordCacheHit()  { CacheHits.Inc() }
func RecordCacheMiss() { CacheMisses.Inc() }
