package database

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders into PostgreSQL's '$n' form. Question marks
// inside single-quoted literals are left alone.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var (
		b       strings.Builder
		n       int
		inQuote bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
