package query

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/normalize"
	"github.com/agenthands/archivegraph/internal/driver"
)

// Build runs req against runner and returns one page of normalized primary
// nodes. The count runs first over the same predicate, so the requested page
// is clamped to the last page before SKIP is computed.
func (b *Builder) Build(ctx context.Context, runner driver.Runner, req model.QueryRequest) (*model.Page, error) {
	p, err := b.compile(req)
	if err != nil {
		return nil, err
	}

	if len(p.lookups) > 0 {
		ids, err := resolveEventIDs(ctx, runner, p.lookups)
		if err != nil {
			return nil, err
		}
		p.withEventIDs(ids)
	}

	qp := p.params

	total, err := count(ctx, runner, CountQuery(qp), qp.Params)
	if err != nil {
		return nil, err
	}

	totalPages := TotalPages(total, qp.Limit)
	current := CurrentPage(qp.Page, totalPages)
	page := &model.Page{
		CurrentPage: current,
		Data:        []model.Node{},
		TotalItems:  total,
		TotalPages:  totalPages,
	}
	if total == 0 {
		return page, nil
	}

	qp.Skip = (current - 1) * qp.Limit
	params := make(map[string]interface{}, len(qp.Params)+2)
	for k, v := range qp.Params {
		params[k] = v
	}
	params["skip"] = qp.Skip
	params["limit"] = qp.Limit

	res, err := runner.ExecuteQuery(ctx, PageQuery(qp), params)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s page %d: %w", qp.Type, current, err)
	}

	ids := make([]int64, 0, len(res.Records))
	for _, rec := range res.Records {
		v, ok := rec.Get("n")
		if !ok {
			continue
		}
		n, ok := v.(neo4j.Node)
		if !ok {
			continue
		}
		ids = append(ids, n.Id)
		page.Data = append(page.Data, normalize.Node(n))
	}

	if err := enrich(ctx, runner, qp.Type, ids, page.Data); err != nil {
		return nil, err
	}

	return page, nil
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// CurrentPage clamps page into 1..totalPages; with no pages it is 1.
func CurrentPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func count(ctx context.Context, runner driver.Runner, query string, params map[string]interface{}) (int64, error) {
	res, err := runner.ExecuteQuery(ctx, query, params)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, ok := res.Records[0].Get("total")
	if !ok {
		return 0, nil
	}
	total, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
	return total, nil
}

// resolveEventIDs runs each lookup and intersects the id sets. The result is
// never nil so an empty intersection still binds as an empty list.
func resolveEventIDs(ctx context.Context, runner driver.Runner, lookups []lookup) ([]int64, error) {
	var result []int64
	for i, l := range lookups {
		res, err := runner.ExecuteQuery(ctx, l.query, l.params)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s to events: %w", l.name, err)
		}

		ids := make([]int64, 0, len(res.Records))
		for _, rec := range res.Records {
			if v, ok := rec.Get("id"); ok {
				if id, ok := v.(int64); ok {
					ids = append(ids, id)
				}
			}
		}

		if i == 0 {
			result = ids
			continue
		}
		result = intersect(result, ids)
	}

	if result == nil {
		result = []int64{}
	}
	return result, nil
}

// intersect keeps the elements of a that are also in b, in a's order.
func intersect(a, b []int64) []int64 {
	in := make(map[int64]bool, len(b))
	for _, id := range b {
		in[id] = true
	}
	out := make([]int64, 0, len(a))
	for _, id := range a {
		if in[id] {
			out = append(out, id)
		}
	}
	return out
}
