package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"recruit-eval/internal/domain"
)

// ExtractorOptions configura la inferencia de pesos del extractor.
type ExtractorOptions struct {
	MaxScale float64
	// WeightMap tiene pesos externos indexados por id de opcion.
	WeightMap map[string]float64
}

var (
	optionIDSuffixPattern   = regexp.MustCompile(`(\d+)$`)
	optionTextWeightPattern = regexp.MustCompile(`\((\d+(?:[.,]\d+)?)\)\s*$`)
)

type traitAccumulator struct {
	trait         domain.Trait
	weightSum     float64
	upstreamSum   float64
	upstreamCount int
}

// ExtractTraits convierte las respuestas de opinion de un candidato en su lista
// de rasgos, uno por rasgo distinto y en orden de primera aparicion.
func ExtractTraits(responses []domain.OpinionResponse, opts ExtractorOptions) ([]domain.Trait, error) {
	maxScale := opts.MaxScale
	if maxScale <= 0 {
		maxScale = domain.DefaultMaxScale
	}
	if len(responses) == 0 {
		return []domain.Trait{}, nil
	}

	lookup := newTraitLookup(len(responses))
	accs := make([]*traitAccumulator, 0, len(responses))

	for i, resp := range responses {
		name := strings.TrimSpace(resp.CategoryName)
		identity := strings.TrimSpace(resp.CategoryNameUUID)
		if name == "" && identity == "" {
			return nil, fmt.Errorf("response %d (option %q): missing trait name and identity: %w", i, resp.OptionID, domain.ErrMalformedResponse)
		}
		if resp.Weight != nil && !inScale(*resp.Weight, maxScale) {
			return nil, fmt.Errorf("response %d (option %q): weight %v outside [1, %v]: %w", i, resp.OptionID, *resp.Weight, maxScale, domain.ErrMalformedResponse)
		}
		if name == "" {
			name = identity
		}

		idx, ok := lookup.find(identity, name)
		if ok && identity != "" && accs[idx].trait.Identity != "" &&
			normalizeTraitKey(accs[idx].trait.Identity) != normalizeTraitKey(identity) {
			// mismo nombre, distinta identidad: son rasgos distintos
			ok = false
		}
		if !ok {
			idx = len(accs)
			accs = append(accs, &traitAccumulator{
				trait: domain.Trait{Name: name, Identity: identity},
			})
			lookup.add(identity, name, idx)
		}
		acc := accs[idx]
		if acc.trait.Identity == "" && identity != "" {
			acc.trait.Identity = identity
			lookup.add(identity, "", idx)
		}
		if acc.trait.Name == acc.trait.Identity && strings.TrimSpace(resp.CategoryName) != "" {
			acc.trait.Name = strings.TrimSpace(resp.CategoryName)
			lookup.add("", acc.trait.Name, idx)
		}
		if acc.trait.GroupID == "" {
			acc.trait.GroupID = strings.TrimSpace(resp.GroupID)
		}

		acc.trait.OccurrenceCount++
		acc.weightSum += ResolveOptionWeight(resp, opts.WeightMap, maxScale)
		if resp.Percentage != nil && !math.IsNaN(*resp.Percentage) {
			acc.upstreamSum += *resp.Percentage
			acc.upstreamCount++
		}
	}

	total := float64(len(responses))
	traits := make([]domain.Trait, 0, len(accs))
	for _, acc := range accs {
		t := acc.trait
		count := float64(t.OccurrenceCount)
		t.StrengthPercentage = roundTo(count/total*100, 1)
		t.RawWeight = acc.weightSum / count
		if acc.upstreamCount > 0 {
			score := acc.upstreamSum / float64(acc.upstreamCount)
			t.UpstreamScore = &score
		}
		traits = append(traits, t)
	}
	return traits, nil
}

// ResolveOptionWeight determina el peso de la opcion elegida. Sin peso explicito
// prueba, en orden: mapa externo, sufijo numerico del id, "(n)" al final del texto
// y finalmente la posicion de la opcion en la pregunta.
func ResolveOptionWeight(resp domain.OpinionResponse, weightMap map[string]float64, maxScale float64) float64 {
	if resp.Weight != nil {
		return *resp.Weight
	}
	if w, ok := weightMap[resp.OptionID]; ok && inScale(w, maxScale) {
		return w
	}
	if m := optionIDSuffixPattern.FindStringSubmatch(strings.TrimSpace(resp.OptionID)); m != nil {
		if w, err := strconv.ParseFloat(m[1], 64); err == nil && inScale(w, maxScale) {
			return w
		}
	}
	if m := optionTextWeightPattern.FindStringSubmatch(resp.OptionText); m != nil {
		if w, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64); err == nil && inScale(w, maxScale) {
			return w
		}
	}
	return positionWeight(resp.OptionID, resp.Options, maxScale)
}

// positionWeight invierte el indice de la opcion para dar mas peso a las listadas
// mas abajo: la primera vale 1 y cada una de las siguientes suma uno.
func positionWeight(optionID string, options []string, maxScale float64) float64 {
	n := len(options)
	for i, id := range options {
		if id != optionID {
			continue
		}
		reversed := n - 1 - i
		return clamp(float64(n-reversed), 1, maxScale)
	}
	return 1
}

func inScale(w, maxScale float64) bool {
	return w >= 1 && w <= maxScale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
