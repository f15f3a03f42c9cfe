// Package drivertest provides scripted stand-ins for the graph driver.
package drivertest

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/driver"
)

// Call is one query seen by a MockRunner.
type Call struct {
	Query     string
	Params    map[string]interface{}
	Operation string
}

// Response answers every query containing Match. Fn, when set, wins over
// Result and Err.
type Response struct {
	Match  string
	Result neo4j.EagerResult
	Err    error
	Fn     func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

// MockRunner answers queries from a script. The first Response whose Match
// is a substring of the query is used; unmatched queries return no records.
type MockRunner struct {
	mu        sync.Mutex
	Responses []Response
	Calls     []Call
}

func (m *MockRunner) On(match string, records ...*neo4j.Record) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, Response{Match: match, Result: neo4j.EagerResult{Records: records}})
	return m
}

func (m *MockRunner) OnError(match string, err error) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, Response{Match: match, Err: err})
	return m
}

func (m *MockRunner) OnFunc(match string, fn func(string, map[string]interface{}) (neo4j.EagerResult, error)) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, Response{Match: match, Fn: fn})
	return m
}

func (m *MockRunner) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Query: query, Params: params, Operation: driver.OperationFrom(ctx)})
	var resp *Response
	for i := range m.Responses {
		if strings.Contains(query, m.Responses[i].Match) {
			resp = &m.Responses[i]
			break
		}
	}
	m.mu.Unlock()

	if resp == nil {
		return neo4j.EagerResult{}, nil
	}
	if resp.Fn != nil {
		return resp.Fn(query, params)
	}
	if resp.Err != nil {
		return neo4j.EagerResult{}, resp.Err
	}
	return resp.Result, nil
}

// CallsMatching returns the calls whose query contains match.
func (m *MockRunner) CallsMatching(match string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if strings.Contains(c.Query, match) {
			out = append(out, c)
		}
	}
	return out
}

// MockDriver hands out sessions backed by one shared MockRunner and counts
// how many were opened and closed.
type MockDriver struct {
	Runner       *MockRunner
	ConnectErr   error
	IndicesBuilt bool

	mu     sync.Mutex
	opened int
	closed int
}

func NewMockDriver() *MockDriver {
	return &MockDriver{Runner: &MockRunner{}}
}

func (m *MockDriver) NewSession(ctx context.Context) driver.Session {
	m.mu.Lock()
	m.opened++
	m.mu.Unlock()
	return &mockSession{driver: m}
}

func (m *MockDriver) VerifyConnectivity(ctx context.Context) error {
	return m.ConnectErr
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.IndicesBuilt = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// Sessions reports opened and closed session counts.
func (m *MockDriver) Sessions() (opened, closed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened, m.closed
}

type mockSession struct {
	driver *MockDriver
	closed bool
}

func (s *mockSession) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return s.driver.Runner.ExecuteQuery(ctx, query, params)
}

func (s *mockSession) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.driver.mu.Lock()
	s.driver.closed++
	s.driver.mu.Unlock()
	return nil
}

// NodeRecord is a single-column record holding n under key.
func NodeRecord(key string, n neo4j.Node) *neo4j.Record {
	return &neo4j.Record{Keys: []string{key}, Values: []any{n}}
}

// Record builds a record from alternating key/value pairs.
func Record(kv ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Keys = append(rec.Keys, kv[i].(string))
		rec.Values = append(rec.Values, kv[i+1])
	}
	return rec
}

// Node is shorthand for a labelled node with properties.
func Node(id int64, label string, props map[string]any) neo4j.Node {
	if props == nil {
		props = map[string]any{}
	}
	return neo4j.Node{Id: id, Labels: []string{label}, Props: props}
}
