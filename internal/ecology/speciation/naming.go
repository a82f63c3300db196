package speciation

import (
	"fmt"
	"strings"
)

var romanNumerals = []string{"", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// UniqueLatinName resolves a naming collision by appending a Roman-numeral
// subspecies suffix, per §4.4's naming rules. used ranks by how many prior
// names share the same binomial root.
func UniqueLatinName(proposed string, used map[string]bool) string {
	if !used[proposed] {
		return proposed
	}
	for i := 1; i < len(romanNumerals); i++ {
		candidate := fmt.Sprintf("%s %s", proposed, romanNumerals[i])
		if !used[candidate] {
			return candidate
		}
	}
	// exhausted the numeral table; fall back to a counted suffix.
	n := 1
	for {
		candidate := fmt.Sprintf("%s subsp. %d", proposed, n)
		if !used[candidate] {
			return candidate
		}
		n++
	}
}

var keyInnovationLabels = map[Type]string{
	TypeGeographicIsolation:      "allopatric divergence",
	TypeEcologicalSpecialization: "niche specialization",
	TypeCoevolution:              "coevolutionary arms race",
	TypeEcologicalIsolation:      "sympatric isolation",
	TypeRadiation:                "adaptive radiation",
}

// KeyInnovationLabel returns the human-readable label used in fallback
// descriptions and lineage-event payloads for a given speciation Type.
func KeyInnovationLabel(t Type) string {
	if label, ok := keyInnovationLabels[t]; ok {
		return label
	}
	return "unclassified divergence"
}

// FallbackLatinName builds "Genus epithet" from the genus code and an
// axis-derived epithet when AI content generation is unavailable.
func FallbackLatinName(genusCode, axis string) string {
	epithet := strings.ReplaceAll(axis, "_", "-")
	return fmt.Sprintf("%s %s", strings.Title(genusCode), epithet)
}

// FallbackCommonName builds a template common name from a characteristic
// word and the lowest taxonomic rank name, per §4.4/§6's fallback content
// contract.
func FallbackCommonName(characteristic, taxonName string) string {
	return fmt.Sprintf("%s %s", strings.Title(characteristic), taxonName)
}

// FallbackDescription synthesises a minimal template description for a new
// lineage when no AI-generated text is available.
func FallbackDescription(commonName, parentCommonName, axis string) string {
	return fmt.Sprintf("The %s is a descendant of the %s, shaped by pressures along the %s axis.", commonName, parentCommonName, axis)
}
