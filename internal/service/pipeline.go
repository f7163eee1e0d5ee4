package service

import (
	"fmt"

	"recruit-eval/internal/domain"
)

// ScoringOptions reune la politica de calculo de todo el pipeline.
type ScoringOptions struct {
	MaxScale           float64
	TrustUpstreamScore bool
	WeightMap          map[string]float64
}

// Evaluate ejecuta extraccion, combinacion y calculo para un candidato.
// Devuelve domain.ErrNoCandidateData junto al resultado centinela cuando no hay
// respuestas de opinion.
func Evaluate(responses []domain.OpinionResponse, profile domain.ProcessProfile, opts ScoringOptions) (domain.CompatibilityResult, error) {
	if len(responses) == 0 {
		return domain.InsufficientDataResult(), domain.ErrNoCandidateData
	}

	targets := BuildTargets(profile)
	if err := ValidateTargets(targets); err != nil {
		return domain.CompatibilityResult{}, fmt.Errorf("validate process profile: %w", err)
	}

	traits, err := ExtractTraits(responses, ExtractorOptions{
		MaxScale:  opts.MaxScale,
		WeightMap: opts.WeightMap,
	})
	if err != nil {
		return domain.CompatibilityResult{}, fmt.Errorf("extract traits: %w", err)
	}

	merged := MergeTraits(traits, targets)

	return CalculateCompatibility(merged, CalculatorOptions{
		MaxScale:           opts.MaxScale,
		TrustUpstreamScore: opts.TrustUpstreamScore,
		UpstreamScore:      upstreamOverallScore(traits),
	}), nil
}

// upstreamOverallScore promedia los puntajes ponderados que llegaron con las
// respuestas; nil si ninguna los traia.
func upstreamOverallScore(traits []domain.Trait) *float64 {
	var sum float64
	var n int
	for _, t := range traits {
		if t.UpstreamScore == nil {
			continue
		}
		sum += *t.UpstreamScore * float64(t.OccurrenceCount)
		n += t.OccurrenceCount
	}
	if n == 0 {
		return nil
	}
	score := sum / float64(n)
	return &score
}
