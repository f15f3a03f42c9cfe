// Package batch pages a read query through SKIP/LIMIT windows so large scans
// are never fetched in a single round trip.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/driver"
	"github.com/agenthands/archivegraph/internal/metrics"
)

const DefaultChunkSize = 500

var ErrInvalidTemplate = errors.New("batch query template must reference $skip and $limit")

type Loader struct {
	Runner    driver.Runner
	ChunkSize int
}

func NewLoader(runner driver.Runner, chunkSize int) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Loader{Runner: runner, ChunkSize: chunkSize}
}

// Window is one SKIP/LIMIT slice of a batch.
type Window struct {
	Skip  int
	Limit int
}

// Windows splits totalCount rows into sequential windows. The first window is
// chunkSize rows and each following window doubles, capped by what remains.
func Windows(totalCount, chunkSize int) []Window {
	if totalCount <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var out []Window
	size := chunkSize
	for skip := 0; skip < totalCount; {
		limit := size
		if remaining := totalCount - skip; limit > remaining {
			limit = remaining
		}
		out = append(out, Window{Skip: skip, Limit: limit})
		skip += limit
		size *= 2
	}
	return out
}

// Load runs template once per window and concatenates the records in window
// order. totalCount must come from a separate count query. The template's
// ordering must be stable for the windows not to overlap.
func (l *Loader) Load(ctx context.Context, template string, params map[string]interface{}, totalCount int) ([]*neo4j.Record, error) {
	if strings.TrimSpace(template) == "" || totalCount <= 0 {
		return []*neo4j.Record{}, nil
	}
	if !strings.Contains(template, "$skip") || !strings.Contains(template, "$limit") {
		return nil, ErrInvalidTemplate
	}

	windows := Windows(totalCount, l.ChunkSize)
	records := make([]*neo4j.Record, 0, totalCount)

	for i, w := range windows {
		chunkParams := make(map[string]interface{}, len(params)+2)
		for k, v := range params {
			chunkParams[k] = v
		}
		chunkParams["skip"] = w.Skip
		chunkParams["limit"] = w.Limit

		res, err := l.Runner.ExecuteQuery(ctx, template, chunkParams)
		if err != nil {
			return nil, fmt.Errorf("failed to load chunk %d/%d (skip %d): %w", i+1, len(windows), w.Skip, err)
		}
		metrics.BatchChunksTotal.Inc()

		records = append(records, res.Records...)
	}

	return records, nil
}
