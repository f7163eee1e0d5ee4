package service

import (
	"reflect"
	"testing"

	"recruit-eval/internal/domain"
)

func merged(name, group string, rawWeight, strength float64) domain.MergedTrait {
	occurrences := 0
	if strength > 0 {
		occurrences = 1
	}
	return domain.MergedTrait{
		Trait: domain.Trait{
			Name:               name,
			GroupID:            group,
			OccurrenceCount:    occurrences,
			StrengthPercentage: strength,
			RawWeight:          rawWeight,
		},
		Weight:        1,
		WeightedScore: strength / 100,
	}
}

func TestCalculateCompatibilityEmptyIsInsufficientData(t *testing.T) {
	result := CalculateCompatibility(nil, CalculatorOptions{})
	if !result.InsufficientData() {
		t.Fatalf("expected insufficient data sentinel, got %+v", result)
	}
	if result.Status == domain.ResultStatusOK {
		t.Fatalf("sentinel must not look like a computed score")
	}
}

func TestCalculateCompatibilityTwoGroupsMean(t *testing.T) {
	result := CalculateCompatibility([]domain.MergedTrait{
		merged("Decidido", "A", 4.5, 50),
		merged("Calmo", "B", 2.5, 50),
	}, CalculatorOptions{})

	if result.Status != domain.ResultStatusOK {
		t.Fatalf("expected ok status, got %s", result.Status)
	}
	if len(result.TraitGroups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.TraitGroups))
	}
	if result.TraitGroups[0].GroupCompatibility != 90 || result.TraitGroups[1].GroupCompatibility != 50 {
		t.Fatalf("unexpected group compatibilities: %+v", result.TraitGroups)
	}
	if result.OverallScore != 70 {
		t.Fatalf("expected overall 70, got %v", result.OverallScore)
	}
	if result.DominantProfile != "Decidido" || result.DominantProfileMatchPercentage != 90 {
		t.Fatalf("expected dominant Decidido at 90, got %s at %v", result.DominantProfile, result.DominantProfileMatchPercentage)
	}
}

func TestCalculateCompatibilityDefaultGroupAndTopTrait(t *testing.T) {
	result := CalculateCompatibility([]domain.MergedTrait{
		merged("Criativo", "", 3, 20),
		merged("Analítico", "  ", 5, 80),
		merged("Comunicativo", "", 0, 0),
	}, CalculatorOptions{})

	if len(result.TraitGroups) != 1 || result.TraitGroups[0].GroupID != domain.DefaultGroupID {
		t.Fatalf("expected single default group, got %+v", result.TraitGroups)
	}
	// (60 + 100 + 0) / 3
	if result.TraitGroups[0].GroupCompatibility != 53.3 {
		t.Fatalf("expected 53.3, got %v", result.TraitGroups[0].GroupCompatibility)
	}
	if result.DominantProfile != "Analítico" {
		t.Fatalf("expected Analítico dominant, got %s", result.DominantProfile)
	}
}

func TestCalculateCompatibilityTieBreaks(t *testing.T) {
	a := merged("Primeiro", "x", 4, 30)
	b := merged("Segundo", "x", 4, 70)
	c := merged("Outro", "y", 4, 50)

	result := CalculateCompatibility([]domain.MergedTrait{a, b, c}, CalculatorOptions{})
	// grupos empatados: gana el primero; dentro del grupo gana el mayor puntaje ponderado
	if result.TraitGroups[0].GroupID != "x" || result.DominantProfile != "Segundo" {
		t.Fatalf("expected group x with Segundo, got %s", result.DominantProfile)
	}
}

func TestCalculateCompatibilityAllTopOptionIsExactly100(t *testing.T) {
	result := CalculateCompatibility([]domain.MergedTrait{
		merged("A", "g1", 5, 33.3),
		merged("B", "g1", 5, 33.3),
		merged("C", "g2", 5, 33.3),
	}, CalculatorOptions{})
	if result.OverallScore != 100 {
		t.Fatalf("expected exactly 100, got %v", result.OverallScore)
	}

	custom := CalculateCompatibility([]domain.MergedTrait{merged("A", "", 7, 100)}, CalculatorOptions{MaxScale: 7})
	if custom.OverallScore != 100 {
		t.Fatalf("expected 100 on custom scale, got %v", custom.OverallScore)
	}
}

func TestCalculateCompatibilityZeroWeightIsNotTopOption(t *testing.T) {
	// observado con peso 0: no se deriva de la fuerza ni cuenta como opcion maxima
	result := CalculateCompatibility([]domain.MergedTrait{merged("A", "", 0, 100)}, CalculatorOptions{})
	if result.OverallScore != 0 || result.TraitGroups[0].GroupCompatibility != 0 {
		t.Fatalf("expected 0, got %+v", result)
	}

	capped := CalculateCompatibility([]domain.MergedTrait{merged("A", "", 9, 100)}, CalculatorOptions{})
	if capped.OverallScore != 100 {
		t.Fatalf("expected weight above scale capped at 100, got %v", capped.OverallScore)
	}
}

func TestCalculateCompatibilityUpstreamScore(t *testing.T) {
	traits := []domain.MergedTrait{merged("A", "", 5, 100)}

	ignored := CalculateCompatibility(traits, CalculatorOptions{UpstreamScore: ptr(42)})
	if ignored.OverallScore != 100 || ignored.ScoreSource != domain.ScoreSourceComputed {
		t.Fatalf("expected computed score when upstream not trusted, got %+v", ignored)
	}

	used := CalculateCompatibility(traits, CalculatorOptions{TrustUpstreamScore: true, UpstreamScore: ptr(142)})
	if used.OverallScore != 100 || used.ScoreSource != domain.ScoreSourceUpstream {
		t.Fatalf("expected clamped upstream score, got %+v", used)
	}

	used = CalculateCompatibility(traits, CalculatorOptions{TrustUpstreamScore: true, UpstreamScore: ptr(42)})
	if used.OverallScore != 42 {
		t.Fatalf("expected upstream score 42, got %v", used.OverallScore)
	}
}

func TestCalculateCompatibilityIsPure(t *testing.T) {
	input := []domain.MergedTrait{
		merged("A", "g1", 3, 50),
		merged("B", "g2", 4, 50),
	}
	first := CalculateCompatibility(input, CalculatorOptions{})
	second := CalculateCompatibility(input, CalculatorOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}
