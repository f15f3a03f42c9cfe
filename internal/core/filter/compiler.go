// Package filter compiles ordered filter clauses into a parameterised Cypher
// boolean expression.
//
// Each clause's Boolean field is the connector to the clause on its right.
// Consecutive OR-connected clauses form one parenthesised group and groups are
// joined with AND, so [a and, b or, c and, d] compiles to
// "a AND (b OR c) AND d".
package filter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/archivegraph/internal/core/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s can be written into a query as a property
// name without quoting.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

var (
	dateFields = map[string]bool{
		"startDate": true,
		"endDate":   true,
	}
	timestampFields = map[string]bool{
		"createdAt": true,
		"updatedAt": true,
	}

	dateLayouts      = []string{"02-01-2006", "2006-01-02", "02/01/2006"}
	timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

const canonicalDate = "2006-01-02"

type Compiler struct {
	// Strict rejects invalid clauses instead of dropping them.
	Strict bool
}

func NewCompiler(strict bool) *Compiler {
	return &Compiler{Strict: strict}
}

// Compile builds and renders clauses against symbol.
func (c *Compiler) Compile(clauses []model.FilterClause, symbol string) (Fragment, error) {
	expr, err := c.Build(clauses)
	if err != nil {
		return Fragment{}, err
	}
	return Render(expr, symbol), nil
}

// Build validates clauses and groups them into an Expr. In lenient mode an
// invalid clause is dropped and the remaining clauses keep their connectors.
func (c *Compiler) Build(clauses []model.FilterClause) (Expr, error) {
	type item struct {
		pred Predicate
		conn model.Connector
	}

	items := make([]item, 0, len(clauses))
	for i, clause := range clauses {
		pred, err := predicate(i, clause)
		if err != nil {
			if c.Strict {
				return Expr{}, err
			}
			slog.Debug("dropping filter clause", "index", i, "field", clause.ElementLabel, "reason", err.Error())
			continue
		}
		items = append(items, item{pred: pred, conn: clause.Connector()})
	}

	var expr Expr
	var group []Predicate
	for i, it := range items {
		group = append(group, it.pred)
		last := i == len(items)-1
		if last || it.conn == model.ConnectorAnd {
			expr.Groups = append(expr.Groups, group)
			group = nil
		}
	}

	return expr, nil
}

func predicate(index int, clause model.FilterClause) (Predicate, error) {
	field := strings.TrimSpace(clause.ElementLabel)
	invalid := func(format string, args ...interface{}) (Predicate, error) {
		return Predicate{}, &ValidationError{Index: index, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if field == "" {
		return invalid("missing field name")
	}
	if !IsIdentifier(field) {
		return invalid("field name is not a valid identifier")
	}

	q, err := model.ParseQualifier(clause.Qualifier)
	if err != nil {
		return invalid("%v", err)
	}

	p := Predicate{Field: field, Qualifier: q}

	switch {
	case field == "_id":
		p.kind = kindIdentity
		switch q {
		case model.QualifierBefore, model.QualifierAfter, model.QualifierRange:
			return invalid("qualifier %q does not apply to identities", q)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(clause.ElementValue), 10, 64)
		if err != nil {
			return invalid("identity %q is not an integer", clause.ElementValue)
		}
		p.Value = id

	case dateFields[field] || timestampFields[field]:
		p.kind = kindDate
		layouts := dateLayouts
		if timestampFields[field] {
			p.kind = kindTimestamp
			layouts = timestampLayouts
		}
		switch q {
		case model.QualifierExact, model.QualifierBefore, model.QualifierAfter:
			d, ok := parseDate(clause.ElementValue, layouts)
			if !ok {
				return invalid("unrecognised date %q", clause.ElementValue)
			}
			p.Value = d
		case model.QualifierRange:
			start, ok := parseDate(clause.ElementStartValue, layouts)
			if !ok {
				return invalid("unrecognised range start %q", clause.ElementStartValue)
			}
			end, ok := parseDate(clause.ElementEndValue, layouts)
			if !ok {
				return invalid("unrecognised range end %q", clause.ElementEndValue)
			}
			p.Start, p.End = start, end
		default:
			return invalid("qualifier %q does not apply to dates", q)
		}

	default:
		p.kind = kindText
		switch q {
		case model.QualifierBefore, model.QualifierAfter, model.QualifierRange:
			return invalid("qualifier %q only applies to dates", q)
		}
		p.Value = clause.ElementValue
	}

	return p, nil
}

// parseDate converts s to yyyy-MM-dd using the first layout that matches.
func parseDate(s string, layouts []string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDate), true
		}
	}
	return "", false
}
