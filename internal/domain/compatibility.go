package domain

const (
	ResultStatusOK               = "ok"
	ResultStatusInsufficientData = "insufficient_data"
)

const (
	ScoreSourceComputed = "computed"
	ScoreSourceUpstream = "upstream"
)

// TraitGroup agrupa los rasgos de un mismo eje de comportamiento.
type TraitGroup struct {
	GroupID            string        `json:"groupId"`
	Traits             []MergedTrait `json:"traits"`
	GroupCompatibility float64       `json:"totalCompatibility"`
}

// CompatibilityResult es la salida final del calculo de compatibilidad.
type CompatibilityResult struct {
	Status                         string       `json:"status"`
	OverallScore                   float64      `json:"overallScore"`
	TraitGroups                    []TraitGroup `json:"traitGroups"`
	DominantProfile                string       `json:"dominantProfile"`
	DominantProfileMatchPercentage float64      `json:"dominantProfileMatchPercentage"`
	ScoreSource                    string       `json:"scoreSource,omitempty"`
}

// InsufficientData indica que no hubo datos para calcular.
// Un resultado asi nunca debe mostrarse como 0% de compatibilidad.
func (r CompatibilityResult) InsufficientData() bool {
	return r.Status == ResultStatusInsufficientData
}

// InsufficientDataResult devuelve el resultado centinela "sin datos".
func InsufficientDataResult() CompatibilityResult {
	return CompatibilityResult{
		Status:      ResultStatusInsufficientData,
		TraitGroups: []TraitGroup{},
	}
}

// CandidateRanking es la posicion de un candidato dentro de un proceso.
type CandidateRanking struct {
	CandidateID string              `json:"candidateId"`
	Result      CompatibilityResult `json:"result"`
}
