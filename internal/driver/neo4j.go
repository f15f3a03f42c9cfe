package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/config"
	"github.com/agenthands/archivegraph/internal/metrics"
)

// Neo4jDriver owns the connection pool. Sessions handed out by NewSession
// borrow a connection until they are closed.
type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	Database string
}

func NewNeo4jDriver(ctx context.Context, cfg config.Neo4jConfig) (*Neo4jDriver, error) {
	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}

	slog.Info("connected to graph database", "uri", cfg.URI)
	return &Neo4jDriver{Driver: d, Database: cfg.Database}, nil
}

func (d *Neo4jDriver) NewSession(ctx context.Context) Session {
	s := d.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: d.Database,
	})
	return &neo4jSession{session: s}
}

func (d *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return d.Driver.VerifyConnectivity(ctx)
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// BuildIndices creates the property indices the filter compiler and the
// taxonomy lookups rely on. Existing indices are left untouched. Every index
// is attempted and the failures are returned together.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	return buildIndices(ctx, IndexQueries, func(ctx context.Context, q string) error {
		_, err := neo4j.ExecuteQuery(ctx, d.Driver, q, nil, neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(d.Database))
		return err
	})
}

func buildIndices(ctx context.Context, queries []string, exec func(context.Context, string) error) error {
	var errs []error
	for _, q := range queries {
		if err := exec(ctx, q); err != nil {
			slog.Warn("failed to create index", "query", q, "error", err)
			errs = append(errs, fmt.Errorf("index %q: %w", q, err))
		}
	}
	return errors.Join(errs...)
}

type neo4jSession struct {
	session neo4j.SessionWithContext
}

func (s *neo4jSession) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	op := OperationFrom(ctx)
	start := time.Now()

	res, err := s.session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		keys, err := result.Keys()
		if err != nil {
			return nil, err
		}
		return neo4j.EagerResult{Keys: keys, Records: records}, nil
	})

	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(op, "error").Inc()
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	metrics.QueriesTotal.WithLabelValues(op, "ok").Inc()

	return res.(neo4j.EagerResult), nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}
