package model

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reCanonicalVCF = regexp.MustCompile(`^([0-9XYMxym]+)-([0-9]+)-([ACGTacgt]+)-([ACGTacgt]+)$`)
	reCanonicalCNV = regexp.MustCompile(`(?i)^([0-9XYM]+):([0-9]+)-([0-9]+):(DEL|DUP|CNV)$`)
)

// ParseCanonicalVCF parses a "CHROM-POS-REF-ALT" string, stripping an
// optional leading chr/Chr prefix from the chromosome for matching. Returns
// ok=false if the string does not parse.
func ParseCanonicalVCF(s string) (chrom string, pos int64, ref, alt string, ok bool) {
	probe := stripChr(s)
	m := reCanonicalVCF.FindStringSubmatch(probe)
	if m == nil {
		return "", 0, "", "", false
	}
	p, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return "", 0, "", "", false
	}
	return m[1], p, strings.ToUpper(m[3]), strings.ToUpper(m[4]), true
}

// ParseCNV parses a "chr:start-end:kind" CNV input string.
func ParseCNV(s string) (chrom string, start, end int64, kind string, ok bool) {
	probe := stripChr(s)
	m := reCanonicalCNV.FindStringSubmatch(probe)
	if m == nil {
		return "", 0, 0, "", false
	}
	st, err1 := strconv.ParseInt(m[2], 10, 64)
	en, err2 := strconv.ParseInt(m[3], 10, 64)
	if err1 != nil || err2 != nil {
		return "", 0, 0, "", false
	}
	return m[1], st, en, strings.ToUpper(m[4]), true
}

func stripChr(s string) string {
	if len(s) > 3 && strings.EqualFold(s[:3], "chr") {
		return s[3:]
	}
	return s
}
