package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/agenthands/archivegraph/internal/core/batch"
	"github.com/agenthands/archivegraph/internal/core/filter"
	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/normalize"
	"github.com/agenthands/archivegraph/internal/core/query"
	"github.com/agenthands/archivegraph/internal/core/traversal"
	"github.com/agenthands/archivegraph/internal/core/tree"
	"github.com/agenthands/archivegraph/internal/driver"
)

// ErrNotFound is returned when a requested root entity does not exist.
var ErrNotFound = errors.New("not found")

type Options struct {
	StrictFilters bool
	BatchSize     int
	DefaultLimit  int
}

// Service runs every read operation in its own session taken from the
// driver pool and released before returning.
type Service struct {
	Driver    driver.GraphDriver
	Builder   *query.Builder
	BatchSize int
}

func NewService(d driver.GraphDriver, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = batch.DefaultChunkSize
	}
	return &Service{
		Driver:    d,
		Builder:   query.NewBuilder(filter.NewCompiler(opts.StrictFilters), opts.DefaultLimit),
		BatchSize: opts.BatchSize,
	}
}

func (s *Service) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Driver.VerifyConnectivity(ctx)
}

// withSession tags ctx with op and runs fn in a fresh session.
func (s *Service) withSession(ctx context.Context, op string, fn func(ctx context.Context, sess driver.Session) error) error {
	ctx = driver.WithOperation(ctx, op)
	sess := s.Driver.NewSession(ctx)
	defer func() {
		if err := sess.Close(ctx); err != nil {
			slog.Warn("failed to close session", "operation", op, "error", err)
		}
	}()
	return fn(ctx, sess)
}

// RelatedNodes returns the nodes reachable from sourceID in 1..steps hops.
func (s *Service) RelatedNodes(ctx context.Context, sourceID int64, steps int, public bool) ([]model.Node, error) {
	var out []model.Node
	err := s.withSession(ctx, "related_nodes", func(ctx context.Context, sess driver.Session) error {
		var err error
		out, err = traversal.NewEngine(sess).RelatedNodes(ctx, sourceID, steps, public)
		return err
	})
	return out, err
}

// RelationsOfType returns the related nodes of one type, or with includeMeta
// the relations that reach them.
func (s *Service) RelationsOfType(ctx context.Context, req traversal.RelationsRequest, includeMeta bool) (interface{}, error) {
	var out interface{}
	err := s.withSession(ctx, "relations_of_type", func(ctx context.Context, sess driver.Session) error {
		engine := traversal.NewEngine(sess)
		if includeMeta {
			rels, err := engine.RelationsOfType(ctx, req)
			out = rels
			return err
		}
		nodes, err := engine.NodesOfType(ctx, req)
		out = nodes
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Query builds one page for req.
func (s *Service) Query(ctx context.Context, req model.QueryRequest) (*model.Page, error) {
	var page *model.Page
	err := s.withSession(ctx, "query_builder", func(ctx context.Context, sess driver.Session) error {
		var err error
		page, err = s.Builder.Build(ctx, sess, req)
		return err
	})
	return page, err
}

// Taxonomy loads the taxonomy with the given systemType and its term tree.
func (s *Service) Taxonomy(ctx context.Context, systemType string) (*model.TaxonomyTree, error) {
	var out *model.TaxonomyTree
	err := s.withSession(ctx, "taxonomy", func(ctx context.Context, sess driver.Session) error {
		q, params, err := gocypher.NewQueryBuilder().
			Match(gocypher.N("tx", model.LabelTaxonomy).WithProperties(map[string]interface{}{"systemType": systemType})).
			Return("tx").
			Build()
		if err != nil {
			return fmt.Errorf("failed to build taxonomy lookup: %w", err)
		}

		res, err := sess.ExecuteQuery(ctx, q, params)
		if err != nil {
			return fmt.Errorf("failed to load taxonomy %q: %w", systemType, err)
		}
		roots := normalize.NodesFromRecords(res.Records, "tx")
		if len(roots) == 0 {
			return fmt.Errorf("taxonomy %q: %w", systemType, ErrNotFound)
		}
		root := roots[0]

		id, err := ParseID(root.ID())
		if err != nil {
			return err
		}
		res, err = sess.ExecuteQuery(ctx, driver.TaxonomyTermsQuery, map[string]interface{}{"taxonomyId": id})
		if err != nil {
			return fmt.Errorf("failed to load terms of taxonomy %q: %w", systemType, err)
		}

		out = tree.Build(root, tree.TermsFromRecords(res.Records))
		return nil
	})
	return out, err
}

// PeopleNetwork scans every Person with its relationship count through the
// batch loader.
func (s *Service) PeopleNetwork(ctx context.Context, public bool) ([]model.Node, error) {
	var out []model.Node
	err := s.withSession(ctx, "people_network", func(ctx context.Context, sess driver.Session) error {
		params := map[string]interface{}{"status": nil}
		if public {
			params["status"] = model.StatusPublic
		}

		res, err := sess.ExecuteQuery(ctx, driver.PeopleCountQuery, params)
		if err != nil {
			return fmt.Errorf("failed to count people: %w", err)
		}
		var total int64
		if len(res.Records) > 0 {
			if v, ok := res.Records[0].Get("total"); ok {
				total, _ = v.(int64)
			}
		}

		records, err := batch.NewLoader(sess, s.BatchSize).Load(ctx, driver.PeopleNetworkQuery, params, int(total))
		if err != nil {
			return err
		}

		out = make([]model.Node, 0, len(records))
		for _, rec := range records {
			row := normalize.Record(rec)
			n, ok := row["n"].(model.Node)
			if !ok {
				continue
			}
			n["relationsCount"] = row["relationsCount"]
			out = append(out, n)
		}
		return nil
	})
	return out, err
}
