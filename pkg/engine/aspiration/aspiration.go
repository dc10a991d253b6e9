// Package aspiration classifies free-text engine descriptors.
package aspiration

import (
	"strings"

	"github.com/revlimit/modengine-go/pkg/model"
)

// ordered rules; the first match wins. Twin-turbo tokens must be
// checked before the single turbo tokens.
var rules = []struct {
	tokens []string
	result model.AspirationType
}{
	{[]string{"twin-turbo", "twin turbo", "twinturbo", "biturbo", "bi-turbo", "tt"},
		model.TwinTurbo},
	{[]string{"turbo", "tdi", "tfsi", "tsi"}, model.Turbo},
	{[]string{"supercharged", "supercharger", "kompressor", "sc"}, model.Supercharged},
}

// Classify maps an engine descriptor to an AspirationType.
// Total and deterministic: every input yields exactly one result,
// unknown descriptors default to naturally aspirated.
func Classify(descriptor string) model.AspirationType {
	norm := strings.ToLower(descriptor)
	fields := strings.FieldsFunc(norm, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '(' || r == ')'
	})
	for _, rule := range rules {
		for _, token := range rule.tokens {
			if strings.ContainsAny(token, " -") {
				if strings.Contains(norm, token) {
					return rule.result
				}
				continue
			}
			// short tokens ("tt", "sc") must match a whole field to
			// avoid false hits inside other words
			if len(token) <= 3 {
				for _, f := range fields {
					if f == token {
						return rule.result
					}
				}
				continue
			}
			if strings.Contains(norm, token) {
				return rule.result
			}
		}
	}
	return model.NaturallyAspirated
}
