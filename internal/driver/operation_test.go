package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", OperationFrom(ctx))
	assert.Equal(t, "unknown", OperationFrom(WithOperation(ctx, "")))
	assert.Equal(t, "taxonomy", OperationFrom(WithOperation(ctx, "taxonomy")))
}
