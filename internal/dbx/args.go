package dbx

import (
	"strconv"
	"strings"
)

// Args collects positional query arguments and hands out matching
// PostgreSQL placeholders ($1, $2, ...).
//
//	var a dbx.Args
//	where := "name ILIKE " + a.Add("%tulsi%")
//	rows, err := db.QueryContext(ctx, "SELECT ... WHERE "+where, a.Values()...)
type Args struct {
	vals []any
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

func (a *Args) Values() []any {
	return a.vals
}

func (a *Args) Len() int {
	return len(a.vals)
}

// Where joins conds with AND and prefixes WHERE; it returns "" when conds is
// empty.
func Where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// Like wraps s for a substring ILIKE match, escaping LIKE metacharacters.
func Like(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
