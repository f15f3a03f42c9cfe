//go:build integration

package integration

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/traversal"
)

func ids(nodes []model.Node) map[string]bool {
	out := map[string]bool{}
	for _, n := range nodes {
		out[n.ID()] = true
	}
	return out
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestRelatedNodes_PublicVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	public, err := f.svc.RelatedNodes(ctx, f.ids["alice"], 2, true)
	require.NoError(t, err)
	got := ids(public)

	assert.True(t, got[id(f.ids["fair"])])
	assert.True(t, got[id(f.ids["cork"])])
	assert.False(t, got[id(f.ids["hidden"])])
	// Reachable only through the private person.
	assert.False(t, got[id(f.ids["secret"])])
	assert.False(t, got[id(f.ids["alice"])])

	all, err := f.svc.RelatedNodes(ctx, f.ids["alice"], 2, false)
	require.NoError(t, err)
	got = ids(all)
	assert.True(t, got[id(f.ids["hidden"])])
	assert.True(t, got[id(f.ids["secret"])])
}

func TestRelationsOfType_WithRole(t *testing.T) {
	f := setup(t)

	out, err := f.svc.RelationsOfType(context.Background(), traversal.RelationsRequest{
		SourceID:   f.ids["alice"],
		SourceType: model.LabelPerson,
		TargetType: model.LabelOrganisation,
		Public:     true,
	}, true)
	require.NoError(t, err)

	rels := out.([]model.Relation)
	require.Len(t, rels, 1)
	assert.Equal(t, "Smith", rels[0].Term.RoleLabel)
	assert.Equal(t, id(f.ids["college"]), rels[0].Ref.ID())
}

func TestQuery_SpatialResolvesThroughEvents(t *testing.T) {
	f := setup(t)

	page, err := f.svc.Query(context.Background(), model.QueryRequest{
		EntityType: model.LabelPerson,
		Main: []model.FilterClause{
			{ElementLabel: "run", ElementValue: f.run, Qualifier: "exact"},
		},
		Spatials: []model.FilterClause{
			{ElementLabel: "label", ElementValue: "Cork", Qualifier: "exact"},
		},
		Public: true,
	})
	require.NoError(t, err)

	require.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, "Alice", page.Data[0]["firstName"])
	assert.Len(t, page.Data[0]["affiliations"], 1)
}

func TestQuery_PagesCoverCount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := model.QueryRequest{
		EntityType: model.LabelEvent,
		Main: []model.FilterClause{
			{ElementLabel: "run", ElementValue: f.run, Qualifier: "exact"},
		},
		Limit: 1,
	}

	first, err := f.svc.Query(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(2), first.TotalItems)

	seen := map[string]bool{}
	for p := 1; p <= first.TotalPages; p++ {
		req.Page = p
		page, err := f.svc.Query(ctx, req)
		require.NoError(t, err)
		for _, n := range page.Data {
			seen[n.ID()] = true
		}
	}
	assert.Len(t, seen, int(first.TotalItems))
}

func TestQuery_DayFirstDatesCompareByCalendar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	query := func(date model.FilterClause) []string {
		t.Helper()
		date.ElementLabel = "startDate"
		page, err := f.svc.Query(ctx, model.QueryRequest{
			EntityType: model.LabelTemporal,
			Main: []model.FilterClause{
				{ElementLabel: "run", ElementValue: f.run, Qualifier: "exact", Boolean: "and"},
				date,
			},
			OrderField: "startDate",
		})
		require.NoError(t, err)

		out := make([]string, 0, len(page.Data))
		for _, n := range page.Data {
			out = append(out, n.ID())
		}
		return out
	}

	assert.Equal(t, []string{id(f.ids["jan1850"]), id(f.ids["march1851"])},
		query(model.FilterClause{Qualifier: "after", ElementValue: "31-12-1849"}))
	assert.Equal(t, []string{id(f.ids["june1849"])},
		query(model.FilterClause{Qualifier: "before", ElementValue: "01-01-1850"}))
	assert.Equal(t, []string{id(f.ids["june1849"]), id(f.ids["jan1850"])},
		query(model.FilterClause{Qualifier: "range", ElementStartValue: "01-01-1849", ElementEndValue: "01-01-1850"}))
}

func TestTaxonomy(t *testing.T) {
	f := setup(t)

	tree, err := f.svc.Taxonomy(context.Background(), "occupations-"+f.run)
	require.NoError(t, err)

	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Trades", tree.Children[0].Label)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "Smith", tree.Children[0].Children[0].Label)
}

func TestPeopleNetwork(t *testing.T) {
	f := setup(t)

	people, err := f.svc.PeopleNetwork(context.Background(), true)
	require.NoError(t, err)

	var alice model.Node
	for _, p := range people {
		if p.ID() == id(f.ids["alice"]) {
			alice = p
		}
		assert.NotEqual(t, id(f.ids["hidden"]), p.ID())
	}
	require.NotNil(t, alice)
	assert.Equal(t, int64(3), alice["relationsCount"])
}
