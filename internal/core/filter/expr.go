package filter

import "github.com/agenthands/archivegraph/internal/core/model"

type fieldKind int

const (
	kindText fieldKind = iota
	kindIdentity
	kindDate
	kindTimestamp
)

// Predicate is one compiled clause. Values are already validated and
// converted: an int64 for identity comparisons, a yyyy-MM-dd string for
// temporal ones.
type Predicate struct {
	Field     string
	Qualifier model.Qualifier
	Value     interface{}
	Start     string
	End       string

	kind fieldKind
}

// Expr is a conjunction of groups; the predicates of a group are joined by
// OR. A group holds one OR-run of the input clauses.
type Expr struct {
	Groups [][]Predicate
}

func (e Expr) Empty() bool {
	return len(e.Groups) == 0
}

// Fragment is a rendered boolean expression and the parameters it binds.
type Fragment struct {
	Cypher string
	Params map[string]interface{}
}

// Where returns the fragment prefixed with WHERE, or "" when it is empty.
func (f Fragment) Where() string {
	if f.Cypher == "" {
		return ""
	}
	return "WHERE " + f.Cypher
}
