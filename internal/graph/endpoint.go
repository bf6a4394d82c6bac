package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Endpoint is one end of a link. It starts out as a bare id and is bound to
// the node record once the layout resolves the graph; ID works for both.
type Endpoint struct {
	id   string
	node *Node
}

// EndpointOf returns an unbound endpoint.
func EndpointOf(id string) Endpoint {
	return Endpoint{id: id}
}

// ID returns the node id regardless of whether the endpoint is bound.
func (e Endpoint) ID() string {
	if e.node != nil {
		return e.node.ID
	}
	return e.id
}

// Node returns the bound node record, or nil.
func (e Endpoint) Node() *Node {
	return e.node
}

// Bound reports whether the endpoint references a node record.
func (e Endpoint) Bound() bool {
	return e.node != nil
}

// Bind points the endpoint at n.
func (e *Endpoint) Bind(n *Node) {
	e.node = n
	e.id = n.ID
}

// UnmarshalJSON accepts "A" as well as {"id": "A"}. Numeric ids are
// formatted the same way node ids are.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := json.RawMessage(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		raw = obj.ID
	}
	id, err := parseID(raw)
	if err != nil {
		return fmt.Errorf("endpoint id: %w", err)
	}
	*e = EndpointOf(id)
	return nil
}

// MarshalJSON always writes the bare id.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ID())
}
