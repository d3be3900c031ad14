package scores

import "github.com/vibe-annotate/vibe-annotate/internal/model"

// Annotate attaches a record's local score lookup (cadd_phred,
// dosage_sensitivity) to it in-place, leaving both fields untouched if the
// variant key has no row in the store — mirroring the teacher's
// alphamissense.Source.Annotate's "only set extras on a hit" discipline.
func Annotate(store *Store, ann *model.AnnotationRecord) {
	if store == nil {
		return
	}
	result, ok := store.Lookup(ann.VariantKey)
	if !ok {
		return
	}
	ann.CADDPhred = result.CADDPhred
	ann.DosageSensitivity = result.DosageSensitivity
}

// AnnotateBatch attaches local scores to every record in anns using one
// BatchLookup round-trip rather than one query per record.
func AnnotateBatch(store *Store, anns []model.AnnotationRecord) error {
	if store == nil || len(anns) == 0 {
		return nil
	}

	keys := make([]model.VariantKey, len(anns))
	for i, ann := range anns {
		keys[i] = ann.VariantKey
	}

	results, err := store.BatchLookup(keys)
	if err != nil {
		return err
	}

	for i := range anns {
		if r, ok := results[anns[i].VariantKey]; ok {
			anns[i].CADDPhred = r.CADDPhred
			anns[i].DosageSensitivity = r.DosageSensitivity
		}
	}
	return nil
}
