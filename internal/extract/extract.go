// Package extract implements the data-extraction and tabular-formatting
// engine of spec §4.7: a small dot/`*` path grammar over annotation data,
// aggregation functions, a sandboxed condition expression language, and
// CSV/TSV row formatting.
//
// Grounded on the teacher's internal/output/tab.go default-sentinel
// discipline (every column falls back to a configured default rather than
// failing the row), generalised from a fixed VEP column list to an arbitrary
// path-driven column configuration. The condition mini-language reuses the
// expr-lang/expr grounding ClusterCockpit-cc-backend/internal/tagger/
// classifyJob.go establishes for rule expressions (expr.Compile(..,
// expr.AsBool()), expr.Run(program, env)).
package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// ColumnConfig describes one output column's extraction per spec §4.7.
type ColumnConfig struct {
	Name       string
	Target     string      // dot/`*` path
	Aggregator string      // "", "max", "min", "avg"/"average", "unique"
	Condition  string      // expr-lang boolean/ternary expression; "value" is bound to the raw extraction
	Default    interface{} // used when the path misses, the condition fails, or evaluation errors
	Formatter  string      // "", "json" — how array results are rendered in tabular output
}

// flattenAnnotationData produces one row per transcript consequence across
// all annotations; annotation-scope columns are duplicated across the rows
// belonging to one annotation, consequence-scope columns read the current
// consequence. Annotations with zero consequences still emit one row.
func FlattenAnnotationData(annotations []model.AnnotationRecord, columns []ColumnConfig) []map[string]interface{} {
	var rows []map[string]interface{}

	for _, ann := range annotations {
		root := annotationToMap(ann)

		if len(ann.TranscriptConsequences) == 0 {
			row := extractRow(root, nil, columns)
			rows = append(rows, row)
			continue
		}

		for _, tc := range ann.TranscriptConsequences {
			row := extractRow(root, consequenceToMap(tc), columns)
			rows = append(rows, row)
		}
	}

	return rows
}

func extractRow(root map[string]interface{}, consequence map[string]interface{}, columns []ColumnConfig) map[string]interface{} {
	scoped := make(map[string]interface{}, len(root)+1)
	for k, v := range root {
		scoped[k] = v
	}
	scoped["consequence"] = consequence

	row := make(map[string]interface{}, len(columns))
	for _, col := range columns {
		row[col.Name] = extractColumn(scoped, col)
	}
	return row
}

// extractColumn resolves one column's value for one row, applying the
// condition gate, default fallback, and aggregation rules of spec §4.7.
func extractColumn(root map[string]interface{}, col ColumnConfig) interface{} {
	raw, found := ResolvePath(root, col.Target)

	if col.Condition != "" {
		ok, err := evalCondition(col.Condition, raw)
		if err != nil || !ok {
			return col.Default
		}
	}

	if !found || raw == nil {
		return col.Default
	}

	if col.Aggregator != "" {
		arr := WrapScalar(raw)
		result, ok := Aggregate(arr, col.Aggregator)
		if !ok {
			return col.Default
		}
		return result
	}

	return raw
}

func evalCondition(condition string, value interface{}) (bool, error) {
	program, err := expr.Compile(condition, expr.Env(map[string]interface{}{"value": value}), expr.AsBool())
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, map[string]interface{}{"value": value})
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

// ResolvePath walks a dot-separated path over nested maps/slices. A `*`
// segment maps the remaining path over every element of the current array,
// collecting results into a new array (absent/failed elements are skipped).
// Exported for reuse by internal/scoring's variable extraction.
func ResolvePath(root interface{}, path string) (interface{}, bool) {
	if path == "" {
		return root, true
	}
	return walk(root, strings.Split(path, "."))
}

func walk(value interface{}, segments []string) (interface{}, bool) {
	if len(segments) == 0 {
		return value, true
	}
	seg := segments[0]
	rest := segments[1:]

	if seg == "*" {
		arr, ok := value.([]interface{})
		if !ok {
			return nil, false
		}
		var results []interface{}
		for _, el := range arr {
			if v, ok := walk(el, rest); ok {
				results = append(results, v)
			}
		}
		return results, true
	}

	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, present := m[seg]
	if !present {
		return nil, false
	}
	return walk(v, rest)
}

// WrapScalar wraps a non-array raw extraction into a length-1 array before
// aggregation, per spec §4.7's explicit anti-footgun rule. Exported for
// reuse by internal/scoring.
func WrapScalar(raw interface{}) []interface{} {
	if arr, ok := raw.([]interface{}); ok {
		return arr
	}
	return []interface{}{raw}
}

// Aggregate applies the named aggregator over values. Returns ok=false if
// the aggregator is unrecognised or no values could be coerced. Exported
// for reuse by internal/scoring.
func Aggregate(values []interface{}, aggregator string) (interface{}, bool) {
	switch aggregator {
	case "max", "min":
		nums := toFloats(values)
		if len(nums) == 0 {
			return nil, false
		}
		best := nums[0]
		for _, n := range nums[1:] {
			if (aggregator == "max" && n > best) || (aggregator == "min" && n < best) {
				best = n
			}
		}
		return best, true
	case "avg", "average":
		nums := toFloats(values)
		if len(nums) == 0 {
			return nil, false
		}
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum / float64(len(nums)), true
	case "unique":
		seen := map[string]bool{}
		var uniq []string
		for _, v := range values {
			s := fmt.Sprintf("%v", v)
			if !seen[s] {
				seen[s] = true
				uniq = append(uniq, s)
			}
		}
		sort.Strings(uniq)
		out := make([]interface{}, len(uniq))
		for i, s := range uniq {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloats(values []interface{}) []float64 {
	var out []float64
	for _, v := range values {
		switch t := v.(type) {
		case float64:
			out = append(out, t)
		case int64:
			out = append(out, float64(t))
		case int:
			out = append(out, float64(t))
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out
}
