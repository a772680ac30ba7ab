// Package sqlbuild turns structured operation descriptions into
// parameterized SQL statements.
//
// Every table and column name is validated with ValidIdent before it is
// spliced into statement text, and every value travels as a bind parameter.
// The one deliberate exception: WHERE and ORDER BY fragments supplied by
// the caller are appended verbatim, without parsing or sanitizing. Callers
// of this package are trusted collaborators; do not expose these builders
// to untrusted input without replacing the raw fragments with a structured
// expression form.
package sqlbuild

import (
	"strconv"
	"strings"

	"github.com/toolwire/sqlbridge/core/dynval"
	"github.com/toolwire/sqlbridge/core/errors"
)

// Statement is parameterized statement text paired with its ordered bind
// values. It is built fresh per call and discarded after execution.
type Statement struct {
	SQL  string
	Args []dynval.Value
}

// Insert builds an INSERT for one row. The column list and the placeholder
// bind order come from the same iteration over values, so they cannot
// drift apart. Returns EmptyColumnSetError when values is empty.
func Insert(table string, values []dynval.Field) (*Statement, error) {
	if !ValidIdent(table) {
		return nil, errors.NewInvalidIdentifier("table", table)
	}
	if len(values) == 0 {
		return nil, errors.NewEmptyColumnSet("insert")
	}

	cols := make([]string, 0, len(values))
	args := make([]dynval.Value, 0, len(values))
	for _, f := range values {
		if !ValidIdent(f.Name) {
			return nil, errors.NewInvalidIdentifier("column", f.Name)
		}
		cols = append(cols, f.Name)
		args = append(args, f.Value)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(placeholders)
	sb.WriteString(")")

	return &Statement{SQL: sb.String(), Args: args}, nil
}

// Select builds a SELECT. A nil or empty columns list selects all columns.
// The where and orderBy fragments are trusted raw SQL appended verbatim;
// params bind positionally to any ? placeholders the caller embedded in
// where. Limit and offset are appended as literal integers, which is safe
// because they arrive as typed integers, not free text.
func Select(table string, columns []string, where string, params []dynval.Value, orderBy string, limit, offset *int64) (*Statement, error) {
	if !ValidIdent(table) {
		return nil, errors.NewInvalidIdentifier("table", table)
	}

	colList := "*"
	if len(columns) > 0 {
		for _, c := range columns {
			if !ValidIdent(c) {
				return nil, errors.NewInvalidIdentifier("column", c)
			}
		}
		colList = strings.Join(columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(colList)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}
	if limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.FormatInt(*limit, 10))
	}
	if offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.FormatInt(*offset, 10))
	}

	return &Statement{SQL: sb.String(), Args: params}, nil
}

// Update builds an UPDATE. Bind order is the set values first, then the
// filter params, matching the textual order of SET before WHERE. Returns
// EmptyColumnSetError when set is empty.
func Update(table string, set []dynval.Field, where string, params []dynval.Value) (*Statement, error) {
	if !ValidIdent(table) {
		return nil, errors.NewInvalidIdentifier("table", table)
	}
	if len(set) == 0 {
		return nil, errors.NewEmptyColumnSet("update")
	}

	frags := make([]string, 0, len(set))
	args := make([]dynval.Value, 0, len(set)+len(params))
	for _, f := range set {
		if !ValidIdent(f.Name) {
			return nil, errors.NewInvalidIdentifier("column", f.Name)
		}
		frags = append(frags, f.Name+" = ?")
		args = append(args, f.Value)
	}
	args = append(args, params...)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(frags, ", "))
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	return &Statement{SQL: sb.String(), Args: args}, nil
}

// Delete builds a DELETE. Omitting the filter deletes every row in the
// table; that is an intentional capability for trusted callers, not a
// builder safeguard.
func Delete(table string, where string, params []dynval.Value) (*Statement, error) {
	if !ValidIdent(table) {
		return nil, errors.NewInvalidIdentifier("table", table)
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	return &Statement{SQL: sb.String(), Args: params}, nil
}
