package features

import (
	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// Annotator attaches region (BED) and gene-set (gene-list / JSON-gene)
// overlaps to annotation records, the ~3% "feature annotator" slice spec.md
// §2 allots. It never loads files itself; the driver builds Index/GeneSet
// values from --bed-file/--gene-list/--json-genes/--json-gene-mapping and
// passes them in, per spec.md's Non-goals.
type Annotator struct {
	regions  *Index
	geneSets map[string]*GeneSet
}

// NewAnnotator wraps a region index and a set of named gene sets. Either
// may be nil/empty; Annotate then simply attaches nothing from that source.
func NewAnnotator(regions *Index, geneSets map[string]*GeneSet) *Annotator {
	if regions == nil {
		regions = NewIndex()
	}
	return &Annotator{regions: regions, geneSets: geneSets}
}

// Annotate appends FeatureOverlap entries to ann for every matching region
// source at its position, and for every gene set containing a gene any of
// its transcript consequences names.
func (a *Annotator) Annotate(ann *model.AnnotationRecord) {
	a.annotateRegions(ann)
	a.annotateGenes(ann)
}

func (a *Annotator) annotateRegions(ann *model.AnnotationRecord) {
	bySource := a.regions.Overlaps(ann.SeqRegionName, ann.Start)
	for source, regions := range bySource {
		for _, r := range regions {
			ann.FeatureOverlaps = append(ann.FeatureOverlaps, model.FeatureOverlap{
				Source: source,
				Name:   r.Name,
				Extra:  r.Extra,
			})
		}
	}
}

func (a *Annotator) annotateGenes(ann *model.AnnotationRecord) {
	if len(a.geneSets) == 0 {
		return
	}

	seen := map[string]bool{}
	for _, tc := range ann.TranscriptConsequences {
		for _, gene := range []string{tc.GeneSymbol, tc.GeneID} {
			if gene == "" || seen[gene] {
				continue
			}
			for setName, set := range a.geneSets {
				extra, ok := set.Lookup(gene)
				if !ok {
					continue
				}
				ann.FeatureOverlaps = append(ann.FeatureOverlaps, model.FeatureOverlap{
					Source: setName,
					Name:   gene,
					Extra:  extra,
				})
			}
			seen[gene] = true
		}
	}
}
