package domain

import "errors"

var (
	// ErrNoCandidateData: el candidato no tiene respuestas de opinion.
	ErrNoCandidateData = errors.New("no candidate data")
	// ErrNoProcessConfig: el proceso no tiene rasgos configurados. Es recuperable.
	ErrNoProcessConfig = errors.New("no process trait configuration")
	// ErrMalformedResponse: respuesta sin campos obligatorios o con peso invalido.
	ErrMalformedResponse = errors.New("malformed opinion response")
	// ErrInvalidTarget: entrada de configuracion del proceso invalida o duplicada.
	ErrInvalidTarget = errors.New("invalid target trait config")
)
