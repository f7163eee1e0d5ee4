package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var traitFolder = cases.Fold()

// normalizeTraitKey compara nombres e identidades sin importar mayusculas,
// espacios sobrantes ni forma Unicode ("Analítico" compuesto o descompuesto).
func normalizeTraitKey(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return traitFolder.String(norm.NFC.String(s))
}

// traitLookup es un indice de dos claves: identidad primero, nombre normalizado despues.
type traitLookup struct {
	byIdentity map[string]int
	byName     map[string]int
}

func newTraitLookup(capacity int) *traitLookup {
	return &traitLookup{
		byIdentity: make(map[string]int, capacity),
		byName:     make(map[string]int, capacity),
	}
}

// add registra idx bajo ambas claves; la primera entrada gana.
func (l *traitLookup) add(identity, name string, idx int) {
	if id := normalizeTraitKey(identity); id != "" {
		if _, ok := l.byIdentity[id]; !ok {
			l.byIdentity[id] = idx
		}
	}
	if n := normalizeTraitKey(name); n != "" {
		if _, ok := l.byName[n]; !ok {
			l.byName[n] = idx
		}
	}
}

func (l *traitLookup) find(identity, name string) (int, bool) {
	if id := normalizeTraitKey(identity); id != "" {
		if idx, ok := l.byIdentity[id]; ok {
			return idx, true
		}
	}
	if n := normalizeTraitKey(name); n != "" {
		if idx, ok := l.byName[n]; ok {
			return idx, true
		}
	}
	return 0, false
}
