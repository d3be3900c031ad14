// Package detect classifies an original input string into one of
// {VCF, CNV, HGVS} (spec §4.3). Classification is a pure, total function:
// every non-empty string maps to exactly one format.
//
// Grounded on the teacher's internal/annotate/variant_spec.go regex-dispatch
// idiom (ParseVariantSpec tries each notation's regex in a fixed order),
// re-targeted at this spec's three-format grammar instead of
// genomic/HGVSc/protein variant-spec parsing.
package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
)

var (
	reCNV = regexp.MustCompile(`(?i)^[0-9XYM]+:[0-9]+-[0-9]+:(DEL|DUP|CNV)$`)
	reVCF = regexp.MustCompile(`^[0-9XYM]+-[0-9]+-[ACGT]+-[ACGT]+$`)
)

// Classify determines the format of a single input string, per spec §4.3's
// decision rule: strip a leading chr/Chr prefix for matching purposes only
// (the original string, not the stripped one, is what is returned and used
// downstream); test CNV grammar, then VCF grammar; anything else is HGVS
// (including rsIDs and any CNV-shaped string with an unrecognised type,
// deliberately let through so the remote service can reject it).
func Classify(input string) (model.InputFormat, error) {
	if input == "" {
		return "", pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("empty input"))
	}

	probe := stripChrPrefix(input)

	if reCNV.MatchString(probe) {
		return model.FormatCNV, nil
	}
	if reVCF.MatchString(probe) {
		return model.FormatVCF, nil
	}
	return model.FormatHGVS, nil
}

func stripChrPrefix(s string) string {
	if len(s) > 3 && strings.EqualFold(s[:3], "chr") {
		return s[3:]
	}
	return s
}
