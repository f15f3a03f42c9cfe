package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes a single read query and buffers every record.
type Runner interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

// Session is a Runner bound to one pooled connection. It must be closed by
// whoever acquired it.
type Session interface {
	Runner
	Close(ctx context.Context) error
}

type GraphDriver interface {
	NewSession(ctx context.Context) Session
	VerifyConnectivity(ctx context.Context) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
