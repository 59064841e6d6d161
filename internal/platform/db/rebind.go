package db

import (
	"strconv"
	"strings"
)

// Rebind converts "?" placeholders to "$1", "$2", ... when postgres is set.
// Queries must not contain literal question marks.
func Rebind(postgres bool, q string) string {
	if !postgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders returns "?, ?, ..." with n markers for IN (...) lists.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
