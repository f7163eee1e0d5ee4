package service

import (
	"math"
	"strings"

	"recruit-eval/internal/domain"
)

// CalculatorOptions configura la escala y la fuente del puntaje global.
type CalculatorOptions struct {
	MaxScale float64
	// TrustUpstreamScore usa el puntaje ponderado provisto por la fuente externa
	// en lugar de la media por grupos, cuando existe.
	TrustUpstreamScore bool
	UpstreamScore      *float64
}

const scoreEpsilon = 1e-9

// CalculateCompatibility reduce los rasgos combinados a puntajes por grupo y global.
// Sin rasgos devuelve el resultado centinela de datos insuficientes.
func CalculateCompatibility(merged []domain.MergedTrait, opts CalculatorOptions) domain.CompatibilityResult {
	if len(merged) == 0 {
		return domain.InsufficientDataResult()
	}
	maxScale := opts.MaxScale
	if maxScale <= 0 {
		maxScale = domain.DefaultMaxScale
	}

	groups, members := partitionByGroup(merged)

	result := domain.CompatibilityResult{
		Status:      domain.ResultStatusOK,
		TraitGroups: make([]domain.TraitGroup, 0, len(groups)),
		ScoreSource: domain.ScoreSourceComputed,
	}

	var (
		groupSum      float64
		allTopOption  = true
		dominantGroup = -1
		dominantScore float64
		dominantTrait string
	)
	for gi, groupID := range groups {
		traits := members[groupID]
		var compatSum, weightSum float64
		topIdx := 0
		topCompat := -1.0
		for i, t := range traits {
			w := underlyingWeight(t, maxScale)
			c := traitCompatibility(w, maxScale)
			compatSum += c
			weightSum += w
			if c > topCompat || (c == topCompat && t.WeightedScore > traits[topIdx].WeightedScore) {
				topIdx = i
				topCompat = c
			}
		}
		n := float64(len(traits))
		groupCompat := roundTo(compatSum/n, 1)
		if math.Abs(weightSum/n-maxScale) > scoreEpsilon {
			allTopOption = false
		}

		result.TraitGroups = append(result.TraitGroups, domain.TraitGroup{
			GroupID:            groupID,
			Traits:             traits,
			GroupCompatibility: groupCompat,
		})
		groupSum += groupCompat

		if dominantGroup < 0 || groupCompat > dominantScore {
			dominantGroup = gi
			dominantScore = groupCompat
			dominantTrait = traits[topIdx].Name
		}
	}

	result.OverallScore = roundTo(groupSum/float64(len(groups)), 1)
	if allTopOption {
		result.OverallScore = 100
	}
	result.DominantProfile = dominantTrait
	result.DominantProfileMatchPercentage = dominantScore

	if opts.TrustUpstreamScore && opts.UpstreamScore != nil && !math.IsNaN(*opts.UpstreamScore) {
		result.OverallScore = clamp(*opts.UpstreamScore, 0, 100)
		result.ScoreSource = domain.ScoreSourceUpstream
	}
	return result
}

// partitionByGroup conserva el orden de primera aparicion de los grupos y de
// los rasgos dentro de cada uno.
func partitionByGroup(merged []domain.MergedTrait) ([]string, map[string][]domain.MergedTrait) {
	var order []string
	members := make(map[string][]domain.MergedTrait)
	for _, t := range merged {
		groupID := strings.TrimSpace(t.GroupID)
		if groupID == "" {
			groupID = domain.DefaultGroupID
		}
		if _, ok := members[groupID]; !ok {
			order = append(order, groupID)
		}
		members[groupID] = append(members[groupID], t)
	}
	return order, members
}

// underlyingWeight es el peso medio de las opciones elegidas. Un rasgo no
// observado (solo objetivo) vale 0.
func underlyingWeight(t domain.MergedTrait, maxScale float64) float64 {
	if t.OccurrenceCount == 0 {
		return 0
	}
	return clamp(t.RawWeight, 0, maxScale)
}

func traitCompatibility(weight, maxScale float64) float64 {
	return math.Min(100, math.Round(weight/maxScale*100))
}
