package source

import "strings"

// SplitLine splits one export line on commas. A double quote toggles literal
// mode, in which commas do not separate fields; quotes themselves are dropped.
// Each field is trimmed of surrounding whitespace and quotes.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, cleanField(current.String()))
}

func cleanField(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// fieldAt returns the cleaned field at index i, or "" when the row is shorter.
func fieldAt(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}

	return cleanField(fields[i])
}
