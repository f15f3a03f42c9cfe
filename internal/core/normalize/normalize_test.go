package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/archivegraph/internal/core/model"
)

func TestNode(t *testing.T) {
	n := neo4j.Node{
		Id:     42,
		Labels: []string{"Person"},
		Props: map[string]any{
			"firstName": "Brigid",
			"birthYear": int64(1790),
			"status":    "public",
		},
	}

	got := Node(n)

	assert.Equal(t, "42", got["_id"])
	assert.Equal(t, "42", got.ID())
	assert.Equal(t, []string{"Person"}, got["systemLabels"])
	assert.Equal(t, "Brigid", got["firstName"])
	assert.Equal(t, int64(1790), got["birthYear"])
	assert.Equal(t, "public", got["status"])
}

func TestNode_DoesNotAliasLabels(t *testing.T) {
	labels := []string{"Person"}
	got := Node(neo4j.Node{Id: 1, Labels: labels})
	labels[0] = "Changed"
	assert.Equal(t, []string{"Person"}, got["systemLabels"])
}

func TestRelation(t *testing.T) {
	r := neo4j.Relationship{
		Id:      7,
		StartId: 1,
		EndId:   2,
		Type:    "depicts",
		Props:   map[string]any{"role": "310"},
	}

	got := Relation(r)

	assert.Equal(t, "7", got["_id"])
	assert.Equal(t, "1", got["start"])
	assert.Equal(t, "2", got["end"])
	assert.Equal(t, "depicts", got["type"])
	assert.Equal(t, "310", got["role"])
}

func TestInteger(t *testing.T) {
	assert.Equal(t, int64(12), Integer(12))
	assert.Equal(t, int64(MaxSafeInteger), Integer(MaxSafeInteger))
	assert.Equal(t, "9007199254740992", Integer(MaxSafeInteger+1))
	assert.Equal(t, "-9007199254740992", Integer(-MaxSafeInteger-1))
}

func TestValue_WrappedInteger(t *testing.T) {
	assert.Equal(t, int64(4294967297), Value(map[string]any{"low": int64(1), "high": int64(1)}))
	assert.Equal(t, int64(5), Value(map[string]any{"low": 5.0, "high": 0.0}))

	// Three keys is an ordinary map.
	got := Value(map[string]any{"low": int64(1), "high": int64(1), "other": "x"})
	assert.IsType(t, map[string]interface{}{}, got)
}

func TestValue_Temporal(t *testing.T) {
	d := neo4j.Date(time.Date(1845, time.March, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "1845-03-02", Value(d))

	ts := time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T10:30:00Z", Value(ts))
}

func TestUnwrapJSON_DoubleEncodedEqualsSingle(t *testing.T) {
	single := `[{"path":"images/fullsize/a.jpg","pathType":"source"},{"path":"images/thumbnails/a.jpg","pathType":"thumbnail"}]`
	doubleBytes, err := json.Marshal(single)
	require.NoError(t, err)
	tripleBytes, err := json.Marshal(string(doubleBytes))
	require.NoError(t, err)

	want := UnwrapJSON(single)
	assert.Equal(t, want, UnwrapJSON(string(doubleBytes)))
	assert.Equal(t, want, UnwrapJSON(string(tripleBytes)))

	arr, ok := want.([]interface{})
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, "images/fullsize/a.jpg", arr[0].(map[string]interface{})["path"])
}

func TestUnwrapJSON_NestedStrings(t *testing.T) {
	// An array property whose elements are themselves encoded objects.
	got := Value([]any{`{"path":"a.jpg"}`, `{"path":"b.jpg"}`})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"path": "a.jpg"},
		map[string]interface{}{"path": "b.jpg"},
	}, got)
}

func TestUnwrapJSON_LeavesNonJSONAlone(t *testing.T) {
	cases := []string{
		`{"broken":`,
		`[unknown] clerk`,
		`123`,
		`true`,
		`Dublin`,
		``,
		`[1,2] trailing`,
	}
	for _, c := range cases {
		assert.Equal(t, c, UnwrapJSON(c), "input %q", c)
	}
}

func TestUnwrapJSON_MalformedInnerLayerKeepsStored(t *testing.T) {
	stored := `"[1, 2"`
	assert.Equal(t, stored, UnwrapJSON(stored))

	inner := `{"path":`
	encoded, err := json.Marshal(inner)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), UnwrapJSON(string(encoded)))

	// A quoted plain string is still unwrapped.
	assert.Equal(t, "Dublin", UnwrapJSON(`"Dublin"`))
}

func TestUnwrapJSON_Numbers(t *testing.T) {
	got := UnwrapJSON(`{"count": 3, "ratio": 0.5, "big": 9007199254740993}`)
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(3), m["count"])
	assert.Equal(t, 0.5, m["ratio"])
	assert.Equal(t, "9007199254740993", m["big"])
}

func TestNodesFromRecords(t *testing.T) {
	records := []*neo4j.Record{
		{Keys: []string{"t"}, Values: []any{neo4j.Node{Id: 1, Labels: []string{"Event"}}}},
		{Keys: []string{"t"}, Values: []any{"not a node"}},
		{Keys: []string{"other"}, Values: []any{neo4j.Node{Id: 2}}},
	}

	got := NodesFromRecords(records, "t")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID())
}

func TestRecord(t *testing.T) {
	rec := &neo4j.Record{
		Keys:   []string{"n", "relationsCount"},
		Values: []any{neo4j.Node{Id: 3, Props: map[string]any{"label": "x"}}, int64(4)},
	}

	got := Record(rec)
	assert.Equal(t, int64(4), got["relationsCount"])
	assert.Equal(t, "3", got["n"].(model.Node).ID())
}

func TestPath(t *testing.T) {
	p := neo4j.Path{
		Nodes:         []neo4j.Node{{Id: 1}, {Id: 2}},
		Relationships: []neo4j.Relationship{{Id: 9, StartId: 1, EndId: 2, Type: "isChildOf"}},
	}

	got := Value(p).(map[string]interface{})
	assert.Len(t, got["nodes"], 2)
	rels := got["relationships"].([]model.Node)
	assert.Equal(t, "isChildOf", rels[0]["type"])
}
