// Package traversal answers "what is connected to this node" questions.
package traversal

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/normalize"
	"github.com/agenthands/archivegraph/internal/driver"
)

// ErrUnknownType is returned for a source or target label outside the
// entity types.
var ErrUnknownType = errors.New("unknown entity type")

const (
	MinSteps = 1
	MaxSteps = 6
)

// ClampSteps bounds a requested hop count to MinSteps..MaxSteps.
func ClampSteps(steps int) int {
	if steps < MinSteps {
		return MinSteps
	}
	if steps > MaxSteps {
		return MaxSteps
	}
	return steps
}

type Engine struct {
	Runner driver.Runner
}

func NewEngine(runner driver.Runner) *Engine {
	return &Engine{Runner: runner}
}

// RelatedNodes returns every node reachable from sourceID over 1..steps
// outgoing hops, excluding the source, ordered by label. With public set,
// every node on the path, the source included, must be public.
func (e *Engine) RelatedNodes(ctx context.Context, sourceID int64, steps int, public bool) ([]model.Node, error) {
	predicate := ""
	params := map[string]interface{}{"sourceId": sourceID}
	if public {
		predicate = driver.PublicPathPredicate
		params["status"] = model.StatusPublic
	}

	query := fmt.Sprintf(driver.RelatedNodesQuery, ClampSteps(steps), predicate)
	res, err := e.Runner.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load related nodes of %d: %w", sourceID, err)
	}

	return normalize.NodesFromRecords(res.Records, "t"), nil
}

type RelationsRequest struct {
	SourceID   int64
	SourceType string
	TargetType string
	// RelationType restricts the relationship type when set.
	RelationType string
	Public       bool
}

// RelationsOfType returns one Relation per relationship between the source
// and nodes of TargetType, ordered by the target's label.
func (e *Engine) RelationsOfType(ctx context.Context, req RelationsRequest) ([]model.Relation, error) {
	records, err := e.relations(ctx, req)
	if err != nil {
		return nil, err
	}

	types := make([]string, 0)
	for _, rec := range records {
		if r, ok := recordRelationship(rec); ok {
			types = append(types, r.Type)
		}
	}
	labels, err := e.TermLabels(ctx, types)
	if err != nil {
		return nil, err
	}

	out := make([]model.Relation, 0, len(records))
	for _, rec := range records {
		rel, ok := RelationFromRecord(rec, "t", "r", "roleLabel")
		if !ok {
			continue
		}
		if label, ok := labels[rel.Term.Label]; ok {
			rel.Term.Label = label
		}
		out = append(out, rel)
	}
	return out, nil
}

// NodesOfType is RelationsOfType without the relationship metadata; each
// target appears once.
func (e *Engine) NodesOfType(ctx context.Context, req RelationsRequest) ([]model.Node, error) {
	records, err := e.relations(ctx, req)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(records))
	out := make([]model.Node, 0, len(records))
	for _, rec := range records {
		v, ok := rec.Get("t")
		if !ok {
			continue
		}
		n, ok := v.(neo4j.Node)
		if !ok || seen[n.Id] {
			continue
		}
		seen[n.Id] = true
		out = append(out, normalize.Node(n))
	}
	return out, nil
}

func (e *Engine) relations(ctx context.Context, req RelationsRequest) ([]*neo4j.Record, error) {
	if !model.IsEntityType(req.SourceType) {
		return nil, fmt.Errorf("%w: source %q", ErrUnknownType, req.SourceType)
	}
	if !model.IsEntityType(req.TargetType) {
		return nil, fmt.Errorf("%w: target %q", ErrUnknownType, req.TargetType)
	}

	params := map[string]interface{}{"sourceId": req.SourceID}
	predicate := ""
	if req.RelationType != "" {
		predicate += " AND type(r) = $relType"
		params["relType"] = req.RelationType
	}
	if req.Public {
		predicate += " AND n.status = $status AND t.status = $status"
		params["status"] = model.StatusPublic
	}

	query := fmt.Sprintf(driver.RelationsOfTypeQuery, req.SourceType, req.TargetType, predicate)
	res, err := e.Runner.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s relations of %d: %w", req.TargetType, req.SourceID, err)
	}
	return res.Records, nil
}

// TermLabels maps relationship type names to the label of the TaxonomyTerm
// whose labelId matches. Types without a term are left out.
func (e *Engine) TermLabels(ctx context.Context, labelIDs []string) (map[string]string, error) {
	out := make(map[string]string)
	done := make(map[string]bool)

	for _, id := range labelIDs {
		if id == "" || done[id] {
			continue
		}
		done[id] = true

		query, params, err := gocypher.NewQueryBuilder().
			Match(gocypher.N("t", model.LabelTaxonomyTerm).WithProperties(map[string]interface{}{"labelId": id})).
			Return("t").
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build term lookup: %w", err)
		}

		res, err := e.Runner.ExecuteQuery(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("failed to load taxonomy term %q: %w", id, err)
		}
		terms := normalize.NodesFromRecords(res.Records, "t")
		if len(terms) > 0 && terms[0].Label() != "" {
			out[id] = terms[0].Label()
		}
	}

	return out, nil
}

// RelationFromRecord builds a Relation from the node, relationship and
// optional role label columns of rec.
func RelationFromRecord(rec *neo4j.Record, nodeKey, relKey, roleLabelKey string) (model.Relation, bool) {
	nv, ok := rec.Get(nodeKey)
	if !ok {
		return model.Relation{}, false
	}
	node, ok := nv.(neo4j.Node)
	if !ok {
		return model.Relation{}, false
	}
	rv, ok := rec.Get(relKey)
	if !ok {
		return model.Relation{}, false
	}
	rel, ok := rv.(neo4j.Relationship)
	if !ok {
		return model.Relation{}, false
	}

	term := model.Term{Label: rel.Type}
	if role, ok := rel.Props["role"]; ok && role != nil && role != "" {
		term.Role = normalize.Value(role)
	}
	if roleLabelKey != "" {
		if v, ok := rec.Get(roleLabelKey); ok && v != nil {
			term.RoleLabel = fmt.Sprint(v)
		}
	}

	return model.Relation{
		ID:   strconv.FormatInt(rel.Id, 10),
		Term: term,
		Ref:  normalize.Node(node),
	}, true
}

func recordRelationship(rec *neo4j.Record) (neo4j.Relationship, bool) {
	v, ok := rec.Get("r")
	if !ok {
		return neo4j.Relationship{}, false
	}
	r, ok := v.(neo4j.Relationship)
	return r, ok
}
