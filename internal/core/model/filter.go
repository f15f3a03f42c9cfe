package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/archivegraph/internal/core/common"
)

type Qualifier string

const (
	QualifierContains    Qualifier = "contains"
	QualifierExact       Qualifier = "exact"
	QualifierNotContains Qualifier = "not_contains"
	QualifierNotExact    Qualifier = "not_exact"
	QualifierBefore      Qualifier = "before"
	QualifierAfter       Qualifier = "after"
	QualifierRange       Qualifier = "range"
)

func ParseQualifier(s string) (Qualifier, error) {
	switch q := Qualifier(strings.ToLower(strings.TrimSpace(s))); q {
	case QualifierContains, QualifierExact, QualifierNotContains, QualifierNotExact,
		QualifierBefore, QualifierAfter, QualifierRange:
		return q, nil
	default:
		return "", fmt.Errorf("unknown qualifier %q", s)
	}
}

// Connector joins a clause to the clause on its right.
type Connector string

const (
	ConnectorAnd Connector = "and"
	ConnectorOr  Connector = "or"
)

// FilterClause is one user-supplied search criterion. Boolean is the
// connector to the next clause; empty means "and".
type FilterClause struct {
	ElementLabel      string `json:"elementLabel"`
	ElementValue      string `json:"elementValue"`
	Qualifier         string `json:"qualifier"`
	Boolean           string `json:"boolean"`
	ElementStartValue string `json:"elementStartValue,omitempty"`
	ElementEndValue   string `json:"elementEndValue,omitempty"`
}

func (c FilterClause) Connector() Connector {
	if strings.EqualFold(strings.TrimSpace(c.Boolean), string(ConnectorOr)) {
		return ConnectorOr
	}
	return ConnectorAnd
}

// ClauseList decodes from a JSON array of clauses or from a string holding
// one, as sent by form-based clients.
type ClauseList []FilterClause

func (l *ClauseList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		clauses, err := common.ParseJSON[[]FilterClause](raw)
		if err != nil {
			return err
		}
		*l = clauses
		return nil
	}

	var clauses []FilterClause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return err
	}
	*l = clauses
	return nil
}
