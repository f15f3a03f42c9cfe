//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/archivegraph/internal/config"
	"github.com/agenthands/archivegraph/internal/core"
	"github.com/agenthands/archivegraph/internal/driver"
)

// fixture is a seeded subgraph tagged with a unique run id.
type fixture struct {
	driver *driver.Neo4jDriver
	svc    *core.Service
	run    string
	ids    map[string]int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	_ = godotenv.Load("../../.env")

	if os.Getenv("NEO4J_URI") == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}

	cfg, err := config.Load("../../config/config.toml")
	if err != nil {
		t.Logf("Config not found, using default: %v", err)
		cfg = config.Default()
	}
	require.NoError(t, cfg.ApplyEnv())

	ctx := context.Background()
	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j)
	require.NoError(t, err)

	f := &fixture{
		driver: d,
		svc:    core.NewService(d, core.Options{BatchSize: 2, DefaultLimit: 25}),
		run:    uuid.NewString(),
		ids:    map[string]int64{},
	}
	require.NoError(t, f.svc.BuildIndices(ctx))

	t.Cleanup(func() {
		_, _ = neo4j.ExecuteQuery(ctx, d.Driver, `MATCH (n {run: $run}) DETACH DELETE n`,
			map[string]any{"run": f.run}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(d.Database))
		_ = d.Close(ctx)
	})

	f.seed(t)
	return f
}

// seed writes:
//
//	(alice:Person public)-[:participatedIn]->(fair:Event public)-[:hasLocation]->(cork:Spatial public)
//	(alice)-[:knows]->(hidden:Person private)-[:participatedIn]->(secret:Event public)
//	(alice)-[:hasAffiliation {role}]->(college:Organisation public)
//	(occupations:Taxonomy)<-[:isChildOf]-(trades:TaxonomyTerm)<-[:isChildOf]-(smith:TaxonomyTerm)
//	(june1849:Temporal), (jan1850:Temporal), (march1851:Temporal) with day-first startDate values
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	res, err := neo4j.ExecuteQuery(ctx, f.driver.Driver, `
		CREATE (alice:Person {run: $run, firstName: 'Alice', lastName: 'Aherne', status: 'public'})
		CREATE (hidden:Person {run: $run, firstName: 'Hidden', lastName: 'Hogan', status: 'private'})
		CREATE (fair:Event {run: $run, label: 'Cattle fair', status: 'public'})
		CREATE (secret:Event {run: $run, label: 'Secret meeting', status: 'public'})
		CREATE (cork:Spatial {run: $run, label: 'Cork', status: 'public'})
		CREATE (college:Organisation {run: $run, label: 'Maynooth College', status: 'public'})
		CREATE (tx:Taxonomy {run: $run, label: 'Occupations', systemType: $systemType})
		CREATE (trades:TaxonomyTerm {run: $run, label: 'Trades', labelId: 'trades'})
		CREATE (smith:TaxonomyTerm {run: $run, label: 'Smith', labelId: 'smith'})
		CREATE (june1849:Temporal {run: $run, label: 'June 1849', startDate: '15-06-1849', status: 'public'})
		CREATE (jan1850:Temporal {run: $run, label: 'January 1850', startDate: '01-01-1850', status: 'public'})
		CREATE (march1851:Temporal {run: $run, label: 'March 1851', startDate: '02-03-1851', status: 'public'})
		CREATE (alice)-[:participatedIn]->(fair)
		CREATE (fair)-[:hasLocation]->(cork)
		CREATE (alice)-[:knows]->(hidden)
		CREATE (hidden)-[:participatedIn]->(secret)
		CREATE (alice)-[:hasAffiliation {role: toString(id(smith))}]->(college)
		CREATE (trades)-[:isChildOf]->(tx)
		CREATE (smith)-[:isChildOf]->(trades)
		RETURN id(alice) AS alice, id(hidden) AS hidden, id(fair) AS fair, id(secret) AS secret,
		       id(cork) AS cork, id(college) AS college, id(tx) AS tx,
		       id(june1849) AS june1849, id(jan1850) AS jan1850, id(march1851) AS march1851
	`, map[string]any{"run": f.run, "systemType": "occupations-" + f.run},
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(f.driver.Database))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	for i, k := range rec.Keys {
		f.ids[k] = rec.Values[i].(int64)
	}
}
