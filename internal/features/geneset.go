package features

// GeneSet is an already-built symbol/ID membership set, generalized from
// the teacher's internal/datasource/oncokb.CancerGeneList — same
// map-backed membership idea, with per-gene Extra metadata instead of a
// fixed HugoSymbol/GeneType pair, so a gene-list, a JSON-genes file, or a
// --json-gene-mapping flag value can all construct one the same way.
type GeneSet struct {
	Name    string
	Members map[string]map[string]string // symbol/ID -> extra metadata
}

// NewGeneSet builds a named, empty gene set ready for population by a
// driver-level loader.
func NewGeneSet(name string) *GeneSet {
	return &GeneSet{Name: name, Members: map[string]map[string]string{}}
}

// Add registers gene under this set, with optional extra metadata (e.g. a
// OncoKB-style "GeneType", or a user-supplied mapping value).
func (g *GeneSet) Add(gene string, extra map[string]string) {
	g.Members[gene] = extra
}

// Contains reports whether gene is a member of this set.
func (g *GeneSet) Contains(gene string) bool {
	_, ok := g.Members[gene]
	return ok
}

// Lookup returns the extra metadata attached to gene, if any.
func (g *GeneSet) Lookup(gene string) (map[string]string, bool) {
	extra, ok := g.Members[gene]
	return extra, ok
}
