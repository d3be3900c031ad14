package vcfout

import (
	"regexp"
	"strings"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// unsafeInfoChars matches characters that would corrupt VCF INFO field
// parsing if left in a VL_DED_INH/VL_COMPHET value (spec §4.10).
var unsafeInfoChars = regexp.MustCompile(`[;=,\s|]`)

// omittedPatterns never produce a VL_DED_INH tag; they carry no diagnostic
// value over its simple absence.
var omittedPatterns = map[string]bool{
	"":                          true,
	"unknown":                   true,
	"unknown_with_missing_data": true,
	"reference":                 true,
	"error_analysis_failed":     true,
}

// ComposeInfo rebuilds the INFO column: the original INFO string with any
// pre-existing VL_* tags stripped, followed by VL_CSQ/VL_DED_INH/VL_COMPHET
// tags, each included only when it carries a non-trivial value.
func ComposeInfo(originalInfo, csq, pattern string, compHet *model.CompHetDetail) string {
	var fields []string
	for _, f := range strings.Split(originalInfo, ";") {
		if f == "" {
			continue
		}
		if strings.HasPrefix(f, "VL_CSQ=") || strings.HasPrefix(f, "VL_DED_INH=") || strings.HasPrefix(f, "VL_COMPHET=") {
			continue
		}
		fields = append(fields, f)
	}

	if csq != "" {
		fields = append(fields, "VL_CSQ="+csq)
	}

	if !omittedPatterns[pattern] {
		fields = append(fields, "VL_DED_INH="+sanitizeUnsafe(pattern))
	}

	if compHet != nil && len(compHet.PartnerVariantKeys) > 0 {
		keys := make([]string, len(compHet.PartnerVariantKeys))
		for i, k := range compHet.PartnerVariantKeys {
			keys[i] = sanitizeUnsafe(string(k))
		}
		fields = append(fields, "VL_COMPHET="+strings.Join(keys, "&")+"|"+sanitizeUnsafe(compHet.Gene))
	}

	if len(fields) == 0 {
		return "."
	}
	return strings.Join(fields, ";")
}

// sanitizeUnsafe replaces INFO-delimiter characters with underscores so a
// pattern/gene/partner value can never be mistaken for a field boundary.
func sanitizeUnsafe(s string) string {
	return unsafeInfoChars.ReplaceAllString(s, "_")
}
