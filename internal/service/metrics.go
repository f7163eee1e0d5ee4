package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"recruit-eval/internal/domain"
)

const (
	outcomeCacheHit         = "cache_hit"
	outcomeComputed         = "computed"
	outcomeInsufficientData = "insufficient_data"
	outcomeError            = "error"
)

// ScoringObserver recibe la telemetria de cada evaluacion de candidato.
type ScoringObserver interface {
	RecordEvaluation(duration time.Duration, outcome string, result domain.CompatibilityResult)
}

// PrometheusObserver exporta las metricas de evaluacion a Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
	scores      prometheus.Histogram
}

// NewPrometheusObserver registra los colectores en reg (DefaultRegisterer si es nil).
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "compatibility"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Latency of candidate compatibility evaluations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Candidate evaluations by outcome.",
		}, []string{"outcome"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of computed overall compatibility scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}
	var err error
	if o.duration, err = registerCollector(reg, o.duration); err != nil {
		return nil, err
	}
	if o.evaluations, err = registerCollector(reg, o.evaluations); err != nil {
		return nil, err
	}
	if o.scores, err = registerCollector(reg, o.scores); err != nil {
		return nil, err
	}
	return o, nil
}

// registerCollector reutiliza el colector existente si ya estaba registrado.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register compatibility metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordEvaluation(duration time.Duration, outcome string, result domain.CompatibilityResult) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	o.evaluations.WithLabelValues(outcome).Inc()
	if outcome == outcomeComputed {
		o.scores.Observe(result.OverallScore)
	}
}

func evaluationOutcome(result domain.CompatibilityResult, cached bool, err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCandidateData), err == nil && result.InsufficientData():
		return outcomeInsufficientData
	case err != nil:
		return outcomeError
	case cached:
		return outcomeCacheHit
	default:
		return outcomeComputed
	}
}
