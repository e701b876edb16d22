// Package servicetype normalizes merchant-facing service names into each
// carrier's canonical service codes and translates between domestic and
// international equivalents.
package servicetype

import (
	"strings"
	"unicode"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// Mapper resolves service-type names for one carrier.
type Mapper struct {
	carrier shipping.CarrierType
}

// NewMapper creates a mapper for a carrier.
func NewMapper(carrier shipping.CarrierType) *Mapper {
	return &Mapper{carrier: carrier}
}

// Carrier returns the carrier this mapper serves.
func (m *Mapper) Carrier() shipping.CarrierType {
	return m.carrier
}

// Normalize resolves a merchant-supplied service name to the carrier's
// canonical code. Unknown names pass through uppercased so the carrier API
// produces the authoritative rejection.
func (m *Mapper) Normalize(name string) string {
	input := strings.ToUpper(strings.TrimSpace(name))
	if input == "" {
		return ""
	}

	table := aliases[m.carrier]
	if _, ok := table[input]; ok {
		return input
	}
	for canonical, names := range table {
		for _, alias := range names {
			if input == alias {
				return canonical
			}
		}
	}

	// Retry with punctuation stripped: "FedEx 2-Day" matches "2 DAY".
	stripped := stripNonAlphanumeric(input)
	for canonical, names := range table {
		if stripped == stripNonAlphanumeric(canonical) {
			return canonical
		}
		for _, alias := range names {
			if stripped == stripNonAlphanumeric(alias) {
				return canonical
			}
		}
	}

	return input
}

// InternationalEquivalent returns the international substitute for a
// domestic code.
func (m *Mapper) InternationalEquivalent(code string) (string, bool) {
	equivalent, ok := domesticToInternational[m.carrier][code]
	return equivalent, ok
}

// DomesticEquivalent returns the domestic substitute for an international
// code.
func (m *Mapper) DomesticEquivalent(code string) (string, bool) {
	equivalent, ok := internationalToDomestic[m.carrier][code]
	return equivalent, ok
}

// IsInternational reports whether a code is valid for cross-border
// shipments.
func (m *Mapper) IsInternational(code string) bool {
	return internationalServices[m.carrier][code]
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
