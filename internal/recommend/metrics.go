package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects recommendation pipeline counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	coldStartsTotal   *prometheus.CounterVec
	candidatesScored  prometheus.Histogram
	replacementsTotal *prometheus.CounterVec
}

// NewMetrics registers the recommendation metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplanner_recommendation_requests_total",
				Help: "Total number of recommendation requests",
			},
			[]string{"status"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealplanner_recommendation_duration_seconds",
				Help:    "Recommendation pipeline duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),
		coldStartsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplanner_cold_starts_total",
				Help: "Total number of suggestion backfills, by trigger and whether they produced candidates",
			},
			[]string{"trigger", "result"},
		),
		candidatesScored: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealplanner_candidates_scored",
				Help:    "Number of candidates scored per request",
				Buckets: prometheus.ExponentialBuckets(1, 4, 6),
			},
		),
		replacementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplanner_replacements_total",
				Help: "Total number of rejected recommendations, by whether a replacement was found",
			},
			[]string{"found"},
		),
	}
}

func (m *Metrics) observeRequest(status string, seconds float64, scored int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(status).Inc()
	m.requestDuration.Observe(seconds)
	m.candidatesScored.Observe(float64(scored))
}

func (m *Metrics) coldStart(trigger string, produced bool) {
	if m == nil {
		return
	}
	result := "empty"
	if produced {
		result = "candidates"
	}
	m.coldStartsTotal.WithLabelValues(trigger, result).Inc()
}

func (m *Metrics) replacement(found bool) {
	if m == nil {
		return
	}
	label := "false"
	if found {
		label = "true"
	}
	m.replacementsTotal.WithLabelValues(label).Inc()
}
