package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeRunner serves rows 0..total-1 for whatever window it is asked for.
type rangeRunner struct {
	total  int
	calls  []Window
	params []map[string]interface{}
	failAt int
}

func (r *rangeRunner) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	skip := params["skip"].(int)
	limit := params["limit"].(int)
	r.calls = append(r.calls, Window{Skip: skip, Limit: limit})
	r.params = append(r.params, params)

	if r.failAt > 0 && len(r.calls) == r.failAt {
		return neo4j.EagerResult{}, errors.New("connection reset")
	}

	var records []*neo4j.Record
	for i := skip; i < skip+limit && i < r.total; i++ {
		records = append(records, &neo4j.Record{Keys: []string{"row"}, Values: []any{int64(i)}})
	}
	return neo4j.EagerResult{Keys: []string{"row"}, Records: records}, nil
}

const template = "MATCH (n:Person) RETURN n ORDER BY id(n) SKIP $skip LIMIT $limit"

func TestLoad_Completeness(t *testing.T) {
	runner := &rangeRunner{total: 1234}
	loader := NewLoader(runner, 500)

	records, err := loader.Load(context.Background(), template, nil, 1234)
	require.NoError(t, err)
	require.Len(t, records, 1234)

	seen := make(map[int64]bool, len(records))
	for i, rec := range records {
		v := rec.Values[0].(int64)
		assert.Equal(t, int64(i), v, "rows must arrive in ascending offset order")
		assert.False(t, seen[v], "duplicate row %d", v)
		seen[v] = true
	}

	assert.Equal(t, []Window{{Skip: 0, Limit: 500}, {Skip: 500, Limit: 734}}, runner.calls)
}

func TestLoad_PassesParamsToEveryChunk(t *testing.T) {
	runner := &rangeRunner{total: 30}
	loader := NewLoader(runner, 10)

	_, err := loader.Load(context.Background(), template, map[string]interface{}{"status": "public"}, 30)
	require.NoError(t, err)

	require.Len(t, runner.params, 2)
	for _, p := range runner.params {
		assert.Equal(t, "public", p["status"])
	}
}

func TestLoad_EmptyInputsIssueNoQuery(t *testing.T) {
	runner := &rangeRunner{total: 10}
	loader := NewLoader(runner, 5)

	records, err := loader.Load(context.Background(), template, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = loader.Load(context.Background(), "  ", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.Empty(t, runner.calls)
}

func TestLoad_ChunkFailureAbortsBatch(t *testing.T) {
	runner := &rangeRunner{total: 100, failAt: 2}
	loader := NewLoader(runner, 10)

	records, err := loader.Load(context.Background(), template, nil, 100)
	assert.Nil(t, records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "chunk 2/")
	assert.Len(t, runner.calls, 2)
}

func TestLoad_RejectsTemplateWithoutWindow(t *testing.T) {
	loader := NewLoader(&rangeRunner{}, 10)
	_, err := loader.Load(context.Background(), "MATCH (n) RETURN n", nil, 10)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestWindows(t *testing.T) {
	assert.Nil(t, Windows(0, 500))
	assert.Equal(t, []Window{{0, 100}}, Windows(100, 500))
	assert.Equal(t, []Window{{0, 500}, {500, 1000}, {1500, 500}}, Windows(2000, 500))
	assert.Equal(t, []Window{{0, 500}}, Windows(500, 0))
}
