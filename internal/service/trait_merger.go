package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"recruit-eval/internal/domain"
)

// MergeTraits alinea los rasgos del candidato con el perfil objetivo del proceso.
// Cada objetivo produce exactamente un MergedTrait (con fuerza cero si el candidato
// no lo tiene) y ningun rasgo del candidato se descarta: los que no coinciden se
// agregan al final con peso por defecto.
func MergeTraits(traits []domain.Trait, targets []domain.TargetTraitConfig) []domain.MergedTrait {
	merged := make([]domain.MergedTrait, 0, len(traits)+len(targets))

	if len(targets) == 0 {
		for _, t := range traits {
			merged = append(merged, newMergedTrait(t, domain.DefaultTraitWeight, domain.MergeSourceCandidateOnly))
		}
		return merged
	}

	lookup := newTraitLookup(len(traits))
	for i, t := range traits {
		lookup.add(t.Identity, t.Name, i)
	}
	consumed := make([]bool, len(traits))

	for _, target := range targets {
		weight := targetWeight(target)
		if idx, ok := findUnconsumed(lookup, traits, consumed, target); ok {
			consumed[idx] = true
			t := traits[idx]
			if t.Identity == "" {
				t.Identity = strings.TrimSpace(target.Identity)
			}
			merged = append(merged, newMergedTrait(t, weight, domain.MergeSourceMatched))
			continue
		}
		merged = append(merged, newMergedTrait(domain.Trait{
			Name:     strings.TrimSpace(target.Name),
			Identity: strings.TrimSpace(target.Identity),
		}, weight, domain.MergeSourceTargetOnly))
	}

	for i, t := range traits {
		if consumed[i] {
			continue
		}
		merged = append(merged, newMergedTrait(t, domain.DefaultTraitWeight, domain.MergeSourceCandidateOnly))
	}
	return merged
}

// findUnconsumed busca primero por identidad y despues por nombre; un rasgo
// ya consumido por otro objetivo no vuelve a usarse.
func findUnconsumed(lookup *traitLookup, traits []domain.Trait, consumed []bool, target domain.TargetTraitConfig) (int, bool) {
	if idx, ok := lookup.find(target.Identity, ""); ok && !consumed[idx] {
		return idx, true
	}
	if idx, ok := lookup.find("", target.Name); ok && !consumed[idx] {
		return idx, true
	}
	return 0, false
}

func newMergedTrait(t domain.Trait, weight float64, source string) domain.MergedTrait {
	m := domain.MergedTrait{
		Trait:  t,
		Weight: weight,
		Source: source,
	}
	if t.UpstreamScore != nil {
		m.WeightedScore = *t.UpstreamScore
	} else {
		m.WeightedScore = t.StrengthPercentage / 100 * weight
	}
	return m
}

func targetWeight(target domain.TargetTraitConfig) float64 {
	if target.Weight <= 0 || math.IsNaN(target.Weight) {
		return domain.DefaultTraitWeight
	}
	return target.Weight
}

// ValidateTargets rechaza entradas sin nombre ni identidad, pesos negativos
// y claves repetidas dentro del mismo proceso.
func ValidateTargets(targets []domain.TargetTraitConfig) error {
	seen := make(map[string]int, len(targets))
	for i, target := range targets {
		name := normalizeTraitKey(target.Name)
		identity := normalizeTraitKey(target.Identity)
		if name == "" && identity == "" {
			return fmt.Errorf("target %d: missing name and identity: %w", i, domain.ErrInvalidTarget)
		}
		if target.Weight < 0 || math.IsNaN(target.Weight) {
			return fmt.Errorf("target %d (%s): negative weight %v: %w", i, target.Name, target.Weight, domain.ErrInvalidTarget)
		}
		key := "name:" + name
		if identity != "" {
			key = "id:" + identity
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("target %d (%s) duplicates target %d: %w", i, target.Name, prev, domain.ErrInvalidTarget)
		}
		seen[key] = i
	}
	return nil
}

// BuildTargets devuelve la lista de objetivos del proceso, completada con las
// entradas del perfil esperado que no esten ya configuradas.
func BuildTargets(profile domain.ProcessProfile) []domain.TargetTraitConfig {
	targets := make([]domain.TargetTraitConfig, 0, len(profile.Targets)+len(profile.ExpectedProfile))
	targets = append(targets, profile.Targets...)
	if len(profile.ExpectedProfile) == 0 {
		return targets
	}

	configured := make(map[string]struct{}, len(profile.Targets))
	for _, t := range profile.Targets {
		configured[normalizeTraitKey(t.Name)] = struct{}{}
	}

	names := make([]string, 0, len(profile.ExpectedProfile))
	for name := range profile.ExpectedProfile {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := normalizeTraitKey(name)
		if key == "" {
			continue
		}
		if _, ok := configured[key]; ok {
			continue
		}
		configured[key] = struct{}{}
		targets = append(targets, domain.TargetTraitConfig{
			Name:   strings.TrimSpace(name),
			Weight: profile.ExpectedProfile[name],
		})
	}
	return targets
}
