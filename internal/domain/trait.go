package domain

// DefaultMaxScale es el peso maximo de una opcion de pregunta de opinion.
const DefaultMaxScale = 5.0

// DefaultTraitWeight se asigna a los rasgos sin configuracion en el proceso.
const DefaultTraitWeight = 1.0

// DefaultGroupID agrupa los rasgos que no declaran eje.
const DefaultGroupID = "default"

// OpinionResponse es una respuesta del candidato a una pregunta de opinion.
// Solo la opcion elegida viaja; Options lleva los ids de todas las opciones
// de la pregunta en el orden en que se mostraron.
type OpinionResponse struct {
	QuestionID       string   `json:"questionId,omitempty"`
	OptionID         string   `json:"optionId"`
	OptionText       string   `json:"optionText"`
	CategoryName     string   `json:"categoryName,omitempty"`
	CategoryNameUUID string   `json:"categoryNameUuid,omitempty"`
	GroupID          string   `json:"groupId,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	Options          []string `json:"options,omitempty"`
}

// Trait es un rasgo observado en un candidato.
type Trait struct {
	Name               string   `json:"name"`
	Identity           string   `json:"identity,omitempty"`
	GroupID            string   `json:"groupId,omitempty"`
	OccurrenceCount    int      `json:"occurrenceCount"`
	StrengthPercentage float64  `json:"strengthPercentage"`
	RawWeight          float64  `json:"rawWeight"`
	UpstreamScore      *float64 `json:"upstreamScore,omitempty"`
}

// TargetTraitConfig es una entrada del perfil deseado de un proceso.
type TargetTraitConfig struct {
	Name     string  `json:"name"`
	Identity string  `json:"categoryNameUuid,omitempty"`
	Weight   float64 `json:"weight"`
}

// ProcessProfile agrupa la configuracion de rasgos de un proceso de seleccion.
type ProcessProfile struct {
	ProcessID       string              `json:"processId,omitempty"`
	Targets         []TargetTraitConfig `json:"targets"`
	ExpectedProfile map[string]float64  `json:"expectedProfile,omitempty"`
}

const (
	MergeSourceMatched       = "matched"
	MergeSourceTargetOnly    = "target_only"
	MergeSourceCandidateOnly = "candidate_only"
)

// MergedTrait es un Trait con el peso resuelto contra la configuracion del proceso.
type MergedTrait struct {
	Trait
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
	Source        string  `json:"source"`
}

// EvaluationPayload es una evaluacion autocontenida: respuestas del candidato
// mas la configuracion del proceso.
type EvaluationPayload struct {
	Responses       []OpinionResponse   `json:"responses"`
	Targets         []TargetTraitConfig `json:"targets"`
	ExpectedProfile map[string]float64  `json:"expectedProfile"`
	WeightMap       map[string]float64  `json:"weightMap"`
}

// Profile devuelve la configuracion del proceso contenida en el payload.
func (p EvaluationPayload) Profile() ProcessProfile {
	return ProcessProfile{
		Targets:         p.Targets,
		ExpectedProfile: p.ExpectedProfile,
	}
}
