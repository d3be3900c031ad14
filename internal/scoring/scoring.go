// Package scoring evaluates configured scoring formulas against annotation
// records (spec §4.8): a variables map extracts named numeric values, and a
// formulas map (scoped annotationLevel/transcriptLevel) computes named
// scores from those variables via a small sandboxed expression language.
//
// Grounded on ClusterCockpit-cc-backend/internal/tagger/classifyJob.go's
// variables-then-rule evaluation discipline (expr.Compile(.., expr.AsFloat64()),
// expr.Run(program, env), per-rule isolated compile/eval errors), re-targeted
// from job-classification tags to per-variant/per-transcript numeric scores.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"go.uber.org/zap"

	"github.com/vibe-annotate/vibe-annotate/internal/extract"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
)

// VariableConfig describes one named extraction feeding formula evaluation.
type VariableConfig struct {
	Target     string
	Aggregator string
	Default    float64
}

// Config is the scoring engine's two-document configuration: a variables
// map and formulas scoped to annotationLevel/transcriptLevel.
type Config struct {
	Variables          map[string]VariableConfig
	AnnotationFormulas map[string]string // scoreName -> expression
	TranscriptFormulas map[string]string // scoreName -> expression
}

// ParseVariable normalizes a variable entry from either object form
// ({target, aggregator?, default}) or the legacy string grammar
// "agg:target|default:N".
func ParseVariable(raw interface{}) (VariableConfig, error) {
	switch v := raw.(type) {
	case string:
		return parseLegacyVariable(v)
	case map[string]interface{}:
		cfg := VariableConfig{}
		cfg.Target, _ = v["target"].(string)
		cfg.Aggregator, _ = v["aggregator"].(string)
		if d, ok := v["default"]; ok {
			cfg.Default = toFloat(d)
		}
		if cfg.Target == "" {
			return cfg, pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("variable missing target"))
		}
		return cfg, nil
	default:
		return VariableConfig{}, pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("unsupported variable form %T", raw))
	}
}

func parseLegacyVariable(s string) (VariableConfig, error) {
	parts := strings.SplitN(s, "|", 2)
	aggTarget := strings.SplitN(parts[0], ":", 2)
	if len(aggTarget) != 2 {
		return VariableConfig{}, pipeerr.Wrap(pipeerr.ErrValidation, fmt.Errorf("malformed legacy variable %q", s))
	}
	cfg := VariableConfig{Aggregator: aggTarget[0], Target: aggTarget[1]}

	if len(parts) == 2 {
		defParts := strings.SplitN(parts[1], ":", 2)
		if len(defParts) == 2 && defParts[0] == "default" {
			if f, err := strconv.ParseFloat(defParts[1], 64); err == nil {
				cfg.Default = f
			}
		}
	}
	return cfg, nil
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

// numericHelpers is the narrow stdlib spec §4.8 exposes to formulas.
func numericHelpers() map[string]interface{} {
	return map[string]interface{}{
		"log": math.Log,
		"exp": math.Exp,
		"max": math.Max,
		"min": math.Min,
		"pow": math.Pow,
	}
}

// pickPrioritisedTranscript selects the cascade spec §4.8 defines for
// annotation-level transcript-field extraction: pick=1, else mane=1, else
// canonical=1, else the first.
func pickPrioritisedTranscript(tcs []model.TranscriptConsequence) *model.TranscriptConsequence {
	for i := range tcs {
		if tcs[i].Pick {
			return &tcs[i]
		}
	}
	for i := range tcs {
		if tcs[i].MANE {
			return &tcs[i]
		}
	}
	for i := range tcs {
		if tcs[i].Canonical {
			return &tcs[i]
		}
	}
	if len(tcs) > 0 {
		return &tcs[0]
	}
	return nil
}

// extractVariables resolves every configured variable against scoped (the
// whole annotation object, with "consequence" bound to whichever transcript
// context the caller wants in scope) into an expr-lang environment.
func extractVariables(scoped map[string]interface{}, variables map[string]VariableConfig) map[string]interface{} {
	env := numericHelpers()
	for name, cfg := range variables {
		v, found := resolveVariable(scoped, cfg)
		if !found {
			env[name] = cfg.Default
			continue
		}
		env[name] = v
	}
	return env
}

// resolveVariable reuses internal/extract's path walker and aggregator
// rather than duplicating them: a miss, a nil result, or an aggregator that
// can't coerce to a number all fall back to cfg.Default.
func resolveVariable(scoped map[string]interface{}, cfg VariableConfig) (float64, bool) {
	raw, found := extract.ResolvePath(scoped, cfg.Target)
	if !found || raw == nil {
		return cfg.Default, false
	}

	if cfg.Aggregator == "" {
		return toFloat(raw), true
	}

	result, ok := extract.Aggregate(extract.WrapScalar(raw), cfg.Aggregator)
	if !ok {
		return cfg.Default, false
	}
	return toFloat(result), true
}

func scopeWithConsequence(root map[string]interface{}, consequence map[string]interface{}) map[string]interface{} {
	scoped := make(map[string]interface{}, len(root)+1)
	for k, v := range root {
		scoped[k] = v
	}
	scoped["consequence"] = consequence
	return scoped
}

// extractAnnotationEnv builds the formula environment for an
// annotationLevel formula: variables are resolved against root with
// "consequence" bound to the prioritised transcript (pick > mane >
// canonical > first), matching the teacher's single-row-per-annotation
// extraction scoping in internal/extract.
func extractAnnotationEnv(ann model.AnnotationRecord, root map[string]interface{}, variables map[string]VariableConfig) map[string]interface{} {
	prioritised := pickPrioritisedTranscript(ann.TranscriptConsequences)
	var consequence map[string]interface{}
	if prioritised != nil {
		consequence = extract.ConsequenceToMap(*prioritised)
	}
	return extractVariables(scopeWithConsequence(root, consequence), variables)
}

// extractTranscriptEnv builds the formula environment for a
// transcriptLevel formula evaluated against one specific transcript
// consequence.
func extractTranscriptEnv(root map[string]interface{}, tc model.TranscriptConsequence, variables map[string]VariableConfig) map[string]interface{} {
	return extractVariables(scopeWithConsequence(root, extract.ConsequenceToMap(tc)), variables)
}

// AnnotationScores computes every annotationLevel formula's score for one
// annotation record. Transcript-field variables are extracted from the
// prioritised transcript (pick > mane > canonical > first).
//
// Per spec §7, formula evaluation errors are isolated per formula: a bad
// formula is skipped (and logged) rather than failing the whole record, so
// this never returns an error.
func AnnotationScores(ann model.AnnotationRecord, root map[string]interface{}, config Config, logger *zap.SugaredLogger) map[string]float64 {
	env := extractAnnotationEnv(ann, root, config.Variables)
	return evalFormulas(config.AnnotationFormulas, env, logger)
}

// TranscriptScores computes every transcriptLevel formula's score for each
// transcript consequence in turn, keyed by transcript ID then score name.
// Per-formula failures are isolated the same way AnnotationScores isolates
// them.
func TranscriptScores(ann model.AnnotationRecord, root map[string]interface{}, config Config, logger *zap.SugaredLogger) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(ann.TranscriptConsequences))
	for _, tc := range ann.TranscriptConsequences {
		env := extractTranscriptEnv(root, tc, config.Variables)
		out[tc.TranscriptID] = evalFormulas(config.TranscriptFormulas, env, logger)
	}
	return out
}

// evalFormulas evaluates every formula against env, skipping (and logging)
// any formula that fails to compile, fails to run, or produces a non-numeric
// result, instead of aborting the whole batch (spec §7: "Formula evaluation
// errors: isolated per variable or per formula; fall back to default or
// emit empty; logged").
func evalFormulas(formulas map[string]string, env map[string]interface{}, logger *zap.SugaredLogger) map[string]float64 {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	out := make(map[string]float64, len(formulas))
	for name, code := range formulas {
		program, err := expr.Compile(code, expr.Env(env), expr.AsFloat64())
		if err != nil {
			logger.Warnw("skipping formula: compile failed", "formula", name, "error", err)
			continue
		}
		result, err := expr.Run(program, env)
		if err != nil {
			logger.Warnw("skipping formula: evaluation failed", "formula", name, "error", err)
			continue
		}
		f, ok := result.(float64)
		if !ok {
			logger.Warnw("skipping formula: did not produce a number", "formula", name)
			continue
		}
		out[name] = f
	}
	return out
}
