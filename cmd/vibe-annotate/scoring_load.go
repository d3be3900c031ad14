package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vibe-annotate/vibe-annotate/internal/scoring"
)

// loadScoringConfig reads `variable_assignment_config.json` and
// `formula_config.json` from dir (spec §4.8/§6) into a scoring.Config.
// Either file may be absent, in which case that half of the configuration
// is left empty rather than erroring, since a deployment may only care
// about one scope of formulas.
func loadScoringConfig(dir string) (scoring.Config, error) {
	cfg := scoring.Config{
		Variables:          map[string]scoring.VariableConfig{},
		AnnotationFormulas: map[string]string{},
		TranscriptFormulas: map[string]string{},
	}

	varsPath := filepath.Join(dir, "variable_assignment_config.json")
	if data, err := os.ReadFile(varsPath); err == nil {
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", varsPath, err)
		}
		for name, v := range raw {
			parsed, err := scoring.ParseVariable(v)
			if err != nil {
				return cfg, fmt.Errorf("variable %q in %s: %w", name, varsPath, err)
			}
			cfg.Variables[name] = parsed
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", varsPath, err)
	}

	formulasPath := filepath.Join(dir, "formula_config.json")
	if data, err := os.ReadFile(formulasPath); err == nil {
		var raw struct {
			AnnotationLevel map[string]string `json:"annotationLevel"`
			TranscriptLevel map[string]string `json:"transcriptLevel"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", formulasPath, err)
		}
		if raw.AnnotationLevel != nil {
			cfg.AnnotationFormulas = raw.AnnotationLevel
		}
		if raw.TranscriptLevel != nil {
			cfg.TranscriptFormulas = raw.TranscriptLevel
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", formulasPath, err)
	}

	return cfg, nil
}
