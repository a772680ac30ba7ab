package sqlbuild

import "regexp"

// identPattern is the definition of a safe identifier: a leading letter or
// underscore followed by letters, digits, or underscores. Anything else
// (quotes, dashes, spaces, dots) is rejected so no identifier can smuggle
// statement syntax.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether s may be interpolated into statement text as
// a table or column name. Identifiers cannot travel as bind parameters, so
// this predicate gates every structural token before any SQL is assembled.
// It is pure and safe for concurrent use.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}
