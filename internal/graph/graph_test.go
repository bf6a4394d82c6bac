package graph

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{
  "nodes": [
    {"id": "elizabeth", "name": "elizabeth", "value": 9},
    {"id": "darcy", "count": 7, "color": "#336699"},
    {"id": "jane"}
  ],
  "links": [
    {"source": "elizabeth", "target": "darcy", "count": 4, "sentiment_score": -0.4},
    {"source": {"id": "jane"}, "target": "elizabeth", "count": 2, "sentiment_score": null},
    {"source": "jane", "target": "bingley"}
  ]
}`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(payload))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "elizabeth", g.Nodes[0].ID)
	assert.Equal(t, 9, g.Nodes[0].Value)
	assert.Equal(t, 7, g.Nodes[1].Value, "count is accepted as an alias of value")
	assert.Equal(t, "#336699", g.Nodes[1].Color)
	assert.Equal(t, 0, g.Nodes[2].Value)

	require.Len(t, g.Links, 3)
	assert.Equal(t, 4, g.Links[0].Count)
	require.NotNil(t, g.Links[0].Sentiment)
	assert.Equal(t, -0.4, *g.Links[0].Sentiment)
	assert.Equal(t, "jane", g.Links[1].Source.ID())
	assert.Nil(t, g.Links[1].Sentiment)
	assert.Equal(t, 1, g.Links[2].Count, "count defaults to 1")
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "not json", input: `nope`},
		{name: "array payload", input: `[]`},
		{name: "null payload", input: `null`},
		{name: "missing nodes", input: `{"links": []}`, field: "nodes"},
		{name: "missing links", input: `{"nodes": []}`, field: "links"},
		{name: "nodes not array", input: `{"nodes": {}, "links": []}`, field: "nodes"},
		{name: "links null", input: `{"nodes": [], "links": null}`, field: "links"},
		{name: "node without id", input: `{"nodes": [{"value": 1}], "links": []}`, field: "nodes[0].id"},
		{name: "empty id", input: `{"nodes": [{"id": ""}], "links": []}`, field: "nodes[0].id"},
		{name: "duplicate id", input: `{"nodes": [{"id": "a"}, {"id": "a"}], "links": []}`, field: "nodes[1].id"},
		{name: "negative value", input: `{"nodes": [{"id": "a", "value": -1}], "links": []}`, field: "nodes[0].value"},
		{name: "huge value", input: `{"nodes": [{"id": "a", "value": 1e300}], "links": []}`, field: "nodes[0].value"},
		{name: "huge node count", input: `{"nodes": [{"id": "a", "count": 1e19}], "links": []}`, field: "nodes[0].count"},
		{name: "huge link count", input: `{"nodes": [], "links": [{"source": "a", "target": "b", "count": 1e300}]}`, field: "links[0].count"},
		{name: "zero count", input: `{"nodes": [], "links": [{"source": "a", "target": "b", "count": 0}]}`, field: "links[0].count"},
		{name: "score too high", input: `{"nodes": [], "links": [{"source": "a", "target": "b", "sentiment_score": 1.5}]}`, field: "links[0].sentiment_score"},
		{name: "missing target", input: `{"nodes": [], "links": [{"source": "a"}]}`, field: "links[0].target"},
		{name: "endpoint object without id", input: `{"nodes": [], "links": [{"source": {}, "target": "b"}]}`, field: "links[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidData), "got %v", err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			if tt.field != "" {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestDecodeNumericID(t *testing.T) {
	g, err := Decode(strings.NewReader(`{"nodes": [{"id": 42}, {"id": "b"}], "links": [{"source": 42, "target": {"id": "b"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "42", g.Nodes[0].ID)
	assert.Equal(t, "42", g.Links[0].Source.ID())
	assert.Empty(t, g.Resolve())
}

func TestResolve(t *testing.T) {
	g, err := Parse([]byte(payload))
	require.NoError(t, err)

	dangling := g.Resolve()
	assert.Equal(t, []string{"bingley"}, dangling)

	l := g.Links[0]
	require.True(t, l.Source.Bound())
	assert.Same(t, g.Nodes[0], l.Source.Node())
	assert.Equal(t, "darcy", l.Target.ID())
	assert.False(t, g.Links[2].Target.Bound())
	assert.Equal(t, "bingley", g.Links[2].Target.ID())
}

func TestEndpointJSON(t *testing.T) {
	var e Endpoint
	require.NoError(t, json.Unmarshal([]byte(`{"id": "a", "x": 3}`), &e))
	assert.Equal(t, "a", e.ID())

	require.NoError(t, json.Unmarshal([]byte(`"b"`), &e))
	assert.Equal(t, "b", e.ID())

	n := &Node{ID: "c"}
	e.Bind(n)
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `"c"`, string(out))
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := Parse([]byte(payload))
	require.NoError(t, err)
	g.Resolve()
	g.Nodes[0].Layout.X = 12

	c := g.Clone()
	c.Nodes[0].Layout.X = 99
	*c.Links[0].Sentiment = 0.9

	assert.Equal(t, 12.0, g.Nodes[0].Layout.X)
	assert.Equal(t, -0.4, *g.Links[0].Sentiment)
	assert.False(t, c.Links[0].Source.Bound())
	assert.Same(t, c.Nodes[1], c.NodeByID("darcy"))
}

func TestFingerprintIgnoresLayout(t *testing.T) {
	g, err := Parse([]byte(payload))
	require.NoError(t, err)
	before := g.Fingerprint()

	g.Resolve()
	g.Nodes[1].Layout = LayoutState{X: 5, Y: -3, VX: 1}
	g.Nodes[1].Box = Box{W: 90, H: 32, Valid: true}
	assert.Equal(t, before, g.Fingerprint())

	g.Links[0].Count++
	assert.NotEqual(t, before, g.Fingerprint())
}
