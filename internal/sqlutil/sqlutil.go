// Package sqlutil holds the small pieces of SQL text generation shared by the
// store implementations: placeholder lists in both dialect styles and
// identifier validation for caller-supplied table names.
package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name is safe to splice into SQL as a bare
// identifier. Table names come from library callers, not end users, but the
// stores still refuse anything that is not a plain identifier.
func ValidIdent(name string) bool {
	return identRE.MatchString(name)
}

// Questions returns n comma-separated "?" markers: "?, ?, ?".
func Questions(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(3 * n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	return b.String()
}

// Dollars returns n comma-separated "$k" markers starting at start:
// Dollars(3, 2) => "$3, $4".
func Dollars(start, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

// DollarRows returns rows parenthesised groups of cols "$k" markers, numbered
// consecutively, for a multi-row VALUES clause:
// DollarRows(2, 2) => "($1, $2), ($3, $4)".
func DollarRows(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		b.WriteString(Dollars(n, cols))
		b.WriteByte(')')
		n += cols
	}
	return b.String()
}

// QuestionRows is DollarRows for the "?" placeholder dialect.
func QuestionRows(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	group := "(" + Questions(cols) + ")"
	parts := make([]string, rows)
	for i := range parts {
		parts[i] = group
	}
	return strings.Join(parts, ", ")
}
