// Package directory maps location classes to pharmacy names and pharmacy
// names to their map coordinates.
package directory

import (
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
)

// StaticTranslator expands each location class into a fixed list of
// facility names.
type StaticTranslator struct {
	vocabulary map[entities.LocationCode][]string
}

var _ providers.LocationTranslator = (*StaticTranslator)(nil)

// DefaultVocabulary lists the pharmacies of the municipal network
func DefaultVocabulary() map[entities.LocationCode][]string {
	return map[entities.LocationCode][]string{
		entities.LocationDistrict: {
			"FARMÁCIA DISTRITAL CAMOBI",
			"FARMÁCIA DISTRITAL TANCREDO NEVES",
			"FARMÁCIA DISTRITAL FLORIANO ROCHA",
			"FARMÁCIA DISTRITAL KENNEDY",
			"FARMÁCIA DISTRITAL SÃO FRANCISCO",
			"FARMÁCIA DISTRITAL ESTAÇÃO DOS VENTOS",
		},
		entities.LocationMunicipal: {"FARMÁCIA MUNICIPAL CENTRAL"},
		entities.LocationSpecial:   {"FARMÁCIA DE MEDICAMENTOS ESPECIAIS"},
	}
}

// NewStaticTranslator creates a translator. A nil vocabulary selects DefaultVocabulary.
func NewStaticTranslator(vocabulary map[entities.LocationCode][]string) *StaticTranslator {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	return &StaticTranslator{vocabulary: vocabulary}
}

// Translate implements providers.LocationTranslator
func (t *StaticTranslator) Translate(codes []entities.LocationCode) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, code := range codes {
		for _, name := range t.vocabulary[code] {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
