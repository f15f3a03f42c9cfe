package query

import (
	"context"
	"fmt"

	"github.com/agenthands/archivegraph/internal/core/common"
	"github.com/agenthands/archivegraph/internal/core/filter"
	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/normalize"
	"github.com/agenthands/archivegraph/internal/core/traversal"
	"github.com/agenthands/archivegraph/internal/driver"
)

// enrich attaches the per-type related data to a page of nodes. ids[i] is the
// internal id of nodes[i]. Each relation kind is one query for the whole page.
func enrich(ctx context.Context, runner driver.Runner, entityType string, ids []int64, nodes []model.Node) error {
	if len(ids) == 0 {
		return nil
	}

	switch entityType {
	case model.LabelEvent:
		if err := attach(ctx, runner, fmt.Sprintf(driver.EventTemporalsQuery, filter.SortKey("t", "startDate")), "", ids, nodes, "temporal"); err != nil {
			return err
		}
		return attach(ctx, runner, driver.EventSpatialsQuery, "", ids, nodes, "spatial")

	case model.LabelPerson:
		for _, n := range nodes {
			for k, v := range n {
				if s, ok := v.(string); ok && k != "_id" {
					n[k] = common.StripSlashes(s)
				}
			}
		}
		if err := attach(ctx, runner, driver.PersonResourcesQuery, "", ids, nodes, "resources"); err != nil {
			return err
		}
		return attach(ctx, runner, driver.PersonAffiliationsQuery, "roleLabel", ids, nodes, "affiliations")

	case model.LabelResource:
		for _, n := range nodes {
			if s, ok := n["paths"].(string); ok {
				n["paths"] = normalize.UnwrapJSON(s)
			}
		}
	}

	return nil
}

// attach runs query over ids and stores the resulting relations on each node
// under key. Nodes without relations get an empty list.
func attach(ctx context.Context, runner driver.Runner, query, roleLabelKey string, ids []int64, nodes []model.Node, key string) error {
	res, err := runner.ExecuteQuery(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}

	bySource := make(map[int64][]model.Relation, len(ids))
	var types []string
	for _, rec := range res.Records {
		v, ok := rec.Get("sourceId")
		if !ok {
			continue
		}
		source, ok := v.(int64)
		if !ok {
			continue
		}
		rel, ok := traversal.RelationFromRecord(rec, "node", "rel", roleLabelKey)
		if !ok {
			continue
		}
		bySource[source] = append(bySource[source], rel)
		types = append(types, rel.Term.Label)
	}

	labels, err := traversal.NewEngine(runner).TermLabels(ctx, types)
	if err != nil {
		return err
	}

	for i, n := range nodes {
		rels := bySource[ids[i]]
		if rels == nil {
			rels = []model.Relation{}
		}
		for j := range rels {
			if label, ok := labels[rels[j].Term.Label]; ok {
				rels[j].Term.Label = label
			}
		}
		n[key] = rels
	}
	return nil
}
