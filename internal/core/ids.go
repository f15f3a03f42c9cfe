package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID reads a client-facing node id.
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", id, err)
	}
	return n, nil
}
