package filter

import (
	"fmt"
	"strings"

	"github.com/agenthands/archivegraph/internal/core/model"
)

type renderer struct {
	symbol string
	params map[string]interface{}
}

func (r *renderer) bind(v interface{}) string {
	name := fmt.Sprintf("%s_%d", r.symbol, len(r.params))
	r.params[name] = v
	return "$" + name
}

// Render writes expr as Cypher over the node bound to symbol. Parameter names
// are prefixed with symbol, so fragments rendered for different symbols can
// share one parameter map.
func Render(expr Expr, symbol string) Fragment {
	r := &renderer{symbol: symbol, params: map[string]interface{}{}}

	groups := make([]string, 0, len(expr.Groups))
	for _, group := range expr.Groups {
		preds := make([]string, 0, len(group))
		for _, p := range group {
			preds = append(preds, r.predicate(p))
		}
		if len(preds) == 1 {
			groups = append(groups, preds[0])
			continue
		}
		groups = append(groups, "("+strings.Join(preds, " OR ")+")")
	}

	return Fragment{
		Cypher: strings.TrimSpace(strings.Join(groups, " AND ")),
		Params: r.params,
	}
}

func (r *renderer) predicate(p Predicate) string {
	prop := r.symbol + "." + p.Field
	exists := prop + " IS NOT NULL"

	switch p.kind {
	case kindIdentity:
		op := "="
		if p.Qualifier == model.QualifierNotExact || p.Qualifier == model.QualifierNotContains {
			op = "<>"
		}
		return fmt.Sprintf("id(%s) %s %s", r.symbol, op, r.bind(p.Value))

	case kindDate, kindTimestamp:
		day := "left(toString(" + prop + "), 10)"
		if p.kind == kindDate {
			day = isoDay(prop)
		}
		switch p.Qualifier {
		case model.QualifierRange:
			return fmt.Sprintf("(%s AND %s >= %s AND %s <= %s)", exists, day, r.bind(p.Start), day, r.bind(p.End))
		case model.QualifierBefore:
			return fmt.Sprintf("(%s AND %s < %s)", exists, day, r.bind(p.Value))
		case model.QualifierAfter:
			return fmt.Sprintf("(%s AND %s > %s)", exists, day, r.bind(p.Value))
		default:
			return fmt.Sprintf("(%s AND %s = %s)", exists, day, r.bind(p.Value))
		}

	default:
		text := "toLower(toString(" + prop + "))"
		switch p.Qualifier {
		case model.QualifierContains:
			return fmt.Sprintf("(%s AND %s CONTAINS toLower(%s))", exists, text, r.bind(p.Value))
		case model.QualifierNotContains:
			return fmt.Sprintf("(%s AND NOT %s CONTAINS toLower(%s))", exists, text, r.bind(p.Value))
		case model.QualifierNotExact:
			return fmt.Sprintf("(%s AND %s <> %s)", exists, prop, r.bind(p.Value))
		default:
			return fmt.Sprintf("(%s AND %s = %s)", exists, prop, r.bind(p.Value))
		}
	}
}

// userDatePattern matches dd-MM-yyyy and dd/MM/yyyy as written by editors.
const userDatePattern = `'\\d{2}[-/]\\d{2}[-/]\\d{4}'`

// isoDay renders prop as a yyyy-MM-dd string so it compares and sorts by
// calendar order. Day-first values are reordered; ISO strings and native
// temporals are truncated to their date part.
func isoDay(prop string) string {
	s := "toString(" + prop + ")"
	return fmt.Sprintf("CASE WHEN %[1]s =~ %[2]s THEN substring(%[1]s, 6, 4) + '-' + substring(%[1]s, 3, 2) + '-' + substring(%[1]s, 0, 2) ELSE left(%[1]s, 10) END", s, userDatePattern)
}

// SortKey returns the expression to order symbol's nodes by field. Date
// fields sort on their calendar day.
func SortKey(symbol, field string) string {
	prop := symbol + "." + field
	if dateFields[field] {
		return isoDay(prop)
	}
	return prop
}

// And joins non-empty boolean expressions with AND. Compiled fragments never
// hold a bare top-level OR, so no extra grouping is needed.
func And(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " AND ")
}
