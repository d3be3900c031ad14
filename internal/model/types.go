package model

import "fmt"

// VariantKey is the immutable CHROM-POS-REF-ALT canonical identifier used as
// the stable join key between recoder output, VEP annotations, genotype map
// entries, and user-supplied VCF records.
type VariantKey string

// NewVariantKey formats the canonical CHROM-POS-REF-ALT key.
func NewVariantKey(chrom string, pos int64, ref, alt string) VariantKey {
	return VariantKey(fmt.Sprintf("%s-%d-%s-%s", chrom, pos, ref, alt))
}

// InputFormat classifies an original input string; see internal/detect.
type InputFormat string

const (
	FormatVCF  InputFormat = "VCF"
	FormatCNV  InputFormat = "CNV"
	FormatHGVS InputFormat = "HGVS"
)

// RecoderAllele is one allele entry within a RecoderResult: the recoder
// service's response carries, per allele label, a set of candidate
// vcf_string representations; at least one must parse as canonical VCF for
// the pipeline to continue on that input.
type RecoderAllele struct {
	AlleleKey string
	VCFString []string
	Raw       Node
}

// RecoderResult is the decoded response for one recoded input: a map from
// allele label to its candidate VCF strings.
type RecoderResult struct {
	Input   string
	Alleles map[string]RecoderAllele
}

// TranscriptConsequence is one predicted effect of a variant on one
// transcript or feature, nested under an AnnotationRecord.
type TranscriptConsequence struct {
	TranscriptID       string
	GeneID             string
	GeneSymbol         string
	FeatureType        string
	ConsequenceTerms   []string
	Impact             string
	Biotype            string
	HGVSc              string
	HGVSp              string
	ProteinStart        int64
	ProteinEnd          int64
	AminoAcids         string
	Codons             string
	SIFTPrediction     string
	PolyPhenPrediction string
	Pick               bool
	MANE               bool
	Canonical          bool
	CDNAPosition       int64
	CDSPosition        int64
	ExonNumber         string
	IntronNumber       string
}

// FeatureOverlap is a region/gene-set membership attached to an annotation by
// the feature annotator.
type FeatureOverlap struct {
	Source string
	Name   string
	Extra  map[string]string
}

// AnnotationRecord is the unit of pipeline output: one original input's
// resolved, annotated variant. originalInput is carried on every record so
// batching across de-duplicated remote calls can never orphan a result.
type AnnotationRecord struct {
	OriginalInput   string
	InputFormat     InputFormat
	Input           string // VEP-formatted region string
	VariantKey      VariantKey
	Allele          string
	VCFString       string
	RecoderData     Node

	SeqRegionName         string
	Start                 int64
	End                   int64
	AlleleString          string
	MostSevereConsequence string
	TranscriptConsequences []TranscriptConsequence

	// CNV-only fields (spec §8 scenario 3).
	BPOverlap         int64
	PercentageOverlap float64

	Phenotypes        []string
	DosageSensitivity string
	CADDPhred         float64

	FeatureOverlaps []FeatureOverlap
	Inheritance     *InheritanceResult
	Scores          map[string]float64

	Err error
}

// GenotypeMap maps a canonical variant key to a mapping from sample id to
// genotype string ("0/0", "0/1", "1|1", "./.", etc).
type GenotypeMap map[VariantKey]map[string]string

// PedigreeEntry is one row of a PED-format pedigree; immutable after load.
type PedigreeEntry struct {
	FamilyID       string
	SampleID       string
	FatherID       string // "0" denotes absent parent
	MotherID       string
	Sex            int // 1=male, 2=female
	AffectedStatus int // 1=unaffected, 2=affected
}

// CompHetDetail attaches compound-heterozygous evidence to a variant.
type CompHetDetail struct {
	PartnerVariantKeys []VariantKey
	Gene               string
	Possible           bool
}

// InheritanceResult is the per-variant deduction produced by the
// inheritance engine.
type InheritanceResult struct {
	PrioritizedPattern string
	PossiblePatterns   []string
	SegregationStatus  map[string]string // pattern -> segregates|does_not_segregate|unknown
	CompHetDetails     *CompHetDetail
}

// CacheEntry is the value stored by the two-tier cache.
type CacheEntry struct {
	Key       string
	Data      []byte
	ExpiresAt int64 // absolute unix ms
	CreatedAt int64 // absolute unix ms
}

// Expired reports whether the entry should be treated as absent at time
// nowMs (absolute unix ms).
func (e CacheEntry) Expired(nowMs int64) bool {
	return nowMs >= e.ExpiresAt
}
