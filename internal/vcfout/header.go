package vcfout

import "strings"

const fileformatLine = "##fileformat=VCFv4.2"

var vlInfoLines = []string{
	`##INFO=<ID=VL_CSQ,Number=.,Type=String,Description="Consequence annotations from vibe-annotate. Format: ` + strings.Join(vlCsqFormat, "|") + `">`,
	`##INFO=<ID=VL_DED_INH,Number=1,Type=String,Description="Deduced inheritance pattern">`,
	`##INFO=<ID=VL_COMPHET,Number=.,Type=String,Description="Compound heterozygous partner variant keys and gene">`,
}

// PrepareHeader ensures ##fileformat=VCFv4.2 is first, injects the three
// VL_* INFO definitions immediately before #CHROM if not already present,
// and preserves every other original header line. If the original headers
// carry no #CHROM line at all, one is synthesised so the document always
// has a column header row preceding data lines.
func PrepareHeader(original []string) []string {
	var out []string

	if !hasFileformat(original) {
		out = append(out, fileformatLine)
	}

	present := map[string]bool{}
	for _, line := range original {
		for _, infoLine := range vlInfoLines {
			id := infoID(infoLine)
			if strings.HasPrefix(line, "##INFO=<ID="+id+",") {
				present[id] = true
			}
		}
	}

	sawChrom := false
	for _, line := range original {
		if strings.HasPrefix(line, "#CHROM") {
			out = append(out, missingInfoLines(present)...)
			sawChrom = true
		}
		out = append(out, line)
	}

	if !sawChrom {
		out = append(out, missingInfoLines(present)...)
		out = append(out, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	}

	return out
}

func missingInfoLines(present map[string]bool) []string {
	var lines []string
	for _, infoLine := range vlInfoLines {
		if !present[infoID(infoLine)] {
			lines = append(lines, infoLine)
		}
	}
	return lines
}

func infoID(infoLine string) string {
	const prefix = "##INFO=<ID="
	rest := strings.TrimPrefix(infoLine, prefix)
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return rest
	}
	return rest[:comma]
}

func hasFileformat(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, "##fileformat") {
			return true
		}
	}
	return false
}
