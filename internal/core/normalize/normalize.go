// Package normalize turns raw driver values into plain, JSON-safe data.
//
// Node identities are exposed as decimal strings under "_id", labels under
// "systemLabels". Integers outside the range a JSON consumer can represent
// exactly become strings, driver temporal and spatial values become strings,
// and string properties holding (possibly repeatedly) encoded JSON are decoded.
// Nothing in this package returns an error: a value that cannot be decoded is
// passed through as it was stored.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/core/model"
)

// MaxSafeInteger is the largest integer a float64 represents exactly.
const MaxSafeInteger = 1<<53 - 1

func Node(n neo4j.Node) model.Node {
	out := make(model.Node, len(n.Props)+2)
	for k, v := range n.Props {
		out[k] = Value(v)
	}
	out["_id"] = strconv.FormatInt(n.Id, 10)

	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	out["systemLabels"] = labels

	return out
}

func Nodes(nodes []neo4j.Node) []model.Node {
	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Node(n))
	}
	return out
}

// Relation flattens a relationship's properties next to its identity,
// endpoints and type.
func Relation(r neo4j.Relationship) model.Node {
	out := make(model.Node, len(r.Props)+4)
	for k, v := range r.Props {
		out[k] = Value(v)
	}
	out["_id"] = strconv.FormatInt(r.Id, 10)
	out["start"] = strconv.FormatInt(r.StartId, 10)
	out["end"] = strconv.FormatInt(r.EndId, 10)
	out["type"] = r.Type
	return out
}

func Record(rec *neo4j.Record) map[string]interface{} {
	out := make(map[string]interface{}, len(rec.Keys))
	for i, k := range rec.Keys {
		if i < len(rec.Values) {
			out[k] = Value(rec.Values[i])
		}
	}
	return out
}

// NodesFromRecords collects the node stored under key in each record. Rows
// where key is missing or not a node are skipped.
func NodesFromRecords(records []*neo4j.Record, key string) []model.Node {
	out := make([]model.Node, 0, len(records))
	for _, rec := range records {
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		if n, ok := v.(neo4j.Node); ok {
			out = append(out, Node(n))
		}
	}
	return out
}

// Value normalizes any value found in a record or property map.
func Value(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case neo4j.Node:
		return Node(x)
	case neo4j.Relationship:
		return Relation(x)
	case neo4j.Path:
		return path(x)
	case string:
		return UnwrapJSON(x)
	case int64:
		return Integer(x)
	case int:
		return Integer(int64(x))
	case int32:
		return Integer(int64(x))
	case float64, float32, bool:
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Integer(n)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = Value(e)
		}
		return out
	case []string:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = UnwrapJSON(e)
		}
		return out
	case map[string]interface{}:
		if n, ok := wrappedInteger(x); ok {
			return Integer(n)
		}
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = Value(e)
		}
		return out
	case neo4j.Date:
		return time.Time(x).Format("2006-01-02")
	case neo4j.LocalDateTime:
		return time.Time(x).Format("2006-01-02T15:04:05.999999999")
	case neo4j.LocalTime:
		return time.Time(x).Format("15:04:05.999999999")
	case neo4j.Time:
		return time.Time(x).Format("15:04:05.999999999Z07:00")
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

// Integer keeps v as a number when a JSON consumer can hold it exactly and
// returns its decimal string otherwise.
func Integer(v int64) interface{} {
	if v > MaxSafeInteger || v < -MaxSafeInteger {
		return strconv.FormatInt(v, 10)
	}
	return v
}

// wrappedInteger recognises the {low, high} pair some drivers and exports use
// to carry a 64-bit integer as two 32-bit halves.
func wrappedInteger(m map[string]interface{}) (int64, bool) {
	if len(m) != 2 {
		return 0, false
	}
	low, ok := toInt64(m["low"])
	if !ok {
		return 0, false
	}
	high, ok := toInt64(m["high"])
	if !ok {
		return 0, false
	}
	return high<<32 | int64(uint32(low)), true
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	case interface{ Int64() (int64, error) }:
		n, err := x.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func path(p neo4j.Path) map[string]interface{} {
	nodes := make([]model.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = Node(n)
	}
	rels := make([]model.Node, len(p.Relationships))
	for i, r := range p.Relationships {
		rels[i] = Relation(r)
	}
	return map[string]interface{}{
		"nodes":         nodes,
		"relationships": rels,
	}
}
