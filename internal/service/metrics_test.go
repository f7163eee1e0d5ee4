package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"recruit-eval/internal/domain"
)

func TestPrometheusObserverCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("register observer: %v", err)
	}

	responses := &mockResponseRepo{
		responses: map[string][]domain.OpinionResponse{
			"c1": {opinion("a", "A", 5)},
		},
	}
	svc := newTestCompatibilityService(responses, &mockProcessRepo{}, NewMemoryResultCache(16, time.Minute))
	svc.SetObserver(observer)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.EvaluateCandidate(ctx, "c1", "p1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if _, err := svc.EvaluateCandidate(ctx, "empty", "p1"); !errors.Is(err, domain.ErrNoCandidateData) {
		t.Fatalf("expected ErrNoCandidateData, got %v", err)
	}

	if got := testutil.ToFloat64(observer.evaluations.WithLabelValues(outcomeComputed)); got != 1 {
		t.Fatalf("expected 1 computed evaluation, got %v", got)
	}
	if got := testutil.ToFloat64(observer.evaluations.WithLabelValues(outcomeCacheHit)); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(observer.evaluations.WithLabelValues(outcomeInsufficientData)); got != 1 {
		t.Fatalf("expected 1 insufficient data evaluation, got %v", got)
	}
}

func TestPrometheusObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("register observer: %v", err)
	}
	second, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("expected second registration to reuse collectors, got %v", err)
	}

	second.RecordEvaluation(time.Millisecond, outcomeError, domain.CompatibilityResult{})
	if got := testutil.ToFloat64(first.evaluations.WithLabelValues(outcomeError)); got != 1 {
		t.Fatalf("expected shared counter, got %v", got)
	}
}

func TestEvaluationOutcome(t *testing.T) {
	ok := domain.CompatibilityResult{Status: domain.ResultStatusOK, OverallScore: 50}
	if got := evaluationOutcome(ok, false, nil); got != outcomeComputed {
		t.Fatalf("expected computed, got %s", got)
	}
	if got := evaluationOutcome(ok, true, nil); got != outcomeCacheHit {
		t.Fatalf("expected cache hit, got %s", got)
	}
	if got := evaluationOutcome(domain.InsufficientDataResult(), false, domain.ErrNoCandidateData); got != outcomeInsufficientData {
		t.Fatalf("expected insufficient data, got %s", got)
	}
	if got := evaluationOutcome(domain.CompatibilityResult{}, false, errors.New("boom")); got != outcomeError {
		t.Fatalf("expected error, got %s", got)
	}

	var nilObserver *PrometheusObserver
	nilObserver.RecordEvaluation(time.Millisecond, outcomeComputed, ok)
}
