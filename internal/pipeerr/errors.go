// Package pipeerr classifies pipeline errors into the seven-category
// taxonomy the pipeline's error-handling design relies on, so callers branch
// on errors.Is/errors.As instead of string-matching messages.
package pipeerr

import "errors"

// Sentinel categories. Wrap with fmt.Errorf("...: %w", ErrX) to attach a
// category to a concrete error.
var (
	// ErrValidation: malformed input, unrecognised CNV type after strict
	// parse, missing required options. Surfaced synchronously; never retried.
	ErrValidation = errors.New("validation error")

	// ErrCanonicalisation: recoder returned no valid VCF string for an input.
	// Attributed to the specific input that failed.
	ErrCanonicalisation = errors.New("canonicalisation error")

	// ErrTransientNetwork: 5xx, 429, network timeout, connection reset.
	// Handled by retry with backoff; surfaced only after exhaustion.
	ErrTransientNetwork = errors.New("transient network error")

	// ErrPermanentRemote: 4xx other than 429. Surfaced immediately, never
	// retried.
	ErrPermanentRemote = errors.New("permanent remote error")

	// ErrCache: always best-effort; cache failures are swallowed inside
	// internal/cache without a log entry, never propagated to fail a
	// composite get/set.
	ErrCache = errors.New("cache error")

	// ErrFormula: formula or variable evaluation failure, isolated per
	// variable or per formula; caller falls back to a default or empty value.
	ErrFormula = errors.New("formula evaluation error")

	// ErrInheritance: inheritance analysis failure, isolated per variant;
	// produces an error_analysis_failed prioritised pattern.
	ErrInheritance = errors.New("inheritance analysis error")
)

// Wrap attaches a category to err by wrapping it in a value whose Is method
// matches category, so errors.Is(result, category) reports true while the
// original error remains inspectable with errors.Unwrap.
func Wrap(category error, err error) error {
	if err == nil {
		return nil
	}
	return &categorized{category: category, err: err}
}

type categorized struct {
	category error
	err      error
}

func (c *categorized) Error() string { return c.category.Error() + ": " + c.err.Error() }
func (c *categorized) Is(target error) bool {
	return target == c.category
}
func (c *categorized) Unwrap() error { return c.err }
