package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatToTabular renders extracted rows as delimited text (CSV when
// delimiter is ',', TSV when '\t'). Escaping per spec §4.7: a field is
// quoted if it contains the delimiter, a double-quote, or a newline;
// interior double-quotes are doubled; tab-delimited output receives no
// quoting at all. Array fields are joined with ";" unless the column
// carries a "json" formatter.
func FormatToTabular(rows []map[string]interface{}, columns []ColumnConfig, delimiter rune) string {
	var sb strings.Builder

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Name
	}
	writeRow(&sb, headers, delimiter)

	for _, row := range rows {
		fields := make([]string, len(columns))
		for i, c := range columns {
			fields[i] = renderField(row[c.Name], c.Formatter)
		}
		writeRow(&sb, fields, delimiter)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, fields []string, delimiter rune) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteRune(delimiter)
		}
		sb.WriteString(escapeField(f, delimiter))
	}
	sb.WriteByte('\n')
}

func escapeField(field string, delimiter rune) string {
	if delimiter == '\t' {
		return field
	}
	needsQuoting := strings.ContainsRune(field, delimiter) || strings.Contains(field, "\"") || strings.Contains(field, "\n")
	if !needsQuoting {
		return field
	}
	return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
}

func renderField(value interface{}, formatter string) string {
	if value == nil {
		return ""
	}

	if arr, ok := value.([]interface{}); ok {
		if formatter == "json" {
			data, _ := json.Marshal(arr)
			return string(data)
		}
		parts := make([]string, len(arr))
		for i, v := range arr {
			parts[i] = scalarString(v)
		}
		return strings.Join(parts, ";")
	}

	return scalarString(value)
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
