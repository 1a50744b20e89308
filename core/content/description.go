package content

import (
	"encoding/json"
	"fmt"
)

// Builder produces a fresh content description. It is invoked exactly
// once per render pass and must be pure with respect to the reconciler:
// side effects outside the description are the caller's responsibility
// and are not sequenced by this system.
type Builder func() *Description

// Description is an immutable, ephemeral collection of content nodes.
// It is built once per render pass, consumed by the Visitor, and then
// discarded. It is an unordered bag aside from the declaration order of
// view annotations, which determines their z-stacking.
type Description struct {
	nodes []Node
}

// NewDescription builds a description from the given nodes.
// The slice is copied; the description never mutates after construction.
func NewDescription(nodes ...Node) *Description {
	copied := make([]Node, len(nodes))
	copy(copied, nodes)
	return &Description{nodes: copied}
}

// Describe wraps a fixed node set into a Builder. Callers with dynamic
// state provide their own closure instead.
func Describe(nodes ...Node) Builder {
	d := NewDescription(nodes...)
	return func() *Description { return d }
}

// Nodes returns the node collection in declaration order.
func (d *Description) Nodes() []Node {
	if d == nil {
		return nil
	}
	return d.nodes
}

// Len returns the number of nodes in the description.
func (d *Description) Len() int {
	if d == nil {
		return 0
	}
	return len(d.nodes)
}

// nodeEnvelope is the kind-tagged wire form of a node. Descriptions
// round-trip through the snapshot store and the inspector API as JSON.
type nodeEnvelope struct {
	Kind Kind            `json:"kind"`
	Body json.RawMessage `json:"body"`
}

// MarshalJSON encodes the description as a kind-tagged node list.
func (d *Description) MarshalJSON() ([]byte, error) {
	envelopes := make([]nodeEnvelope, 0, len(d.nodes))
	for _, n := range d.nodes {
		body, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s node: %w", n.NodeKind(), err)
		}
		envelopes = append(envelopes, nodeEnvelope{Kind: n.NodeKind(), Body: body})
	}
	return json.Marshal(struct {
		Nodes []nodeEnvelope `json:"nodes"`
	}{Nodes: envelopes})
}

// UnmarshalJSON decodes a kind-tagged node list. View annotation
// resources are runtime-only and come back nil; hosts rebind them before
// rendering if attachment is wanted.
func (d *Description) UnmarshalJSON(data []byte) error {
	var wire struct {
		Nodes []nodeEnvelope `json:"nodes"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	nodes := make([]Node, 0, len(wire.Nodes))
	for _, env := range wire.Nodes {
		node, err := decodeNode(env)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	d.nodes = nodes
	return nil
}

func decodeNode(env nodeEnvelope) (Node, error) {
	switch env.Kind {
	case KindPoint:
		var n PointAnnotation
		if err := json.Unmarshal(env.Body, &n); err != nil {
			return nil, fmt.Errorf("failed to decode point node: %w", err)
		}
		return n, nil
	case KindPolyline:
		var n PolylineAnnotation
		if err := json.Unmarshal(env.Body, &n); err != nil {
			return nil, fmt.Errorf("failed to decode polyline node: %w", err)
		}
		return n, nil
	case KindPolygon:
		var n PolygonAnnotation
		if err := json.Unmarshal(env.Body, &n); err != nil {
			return nil, fmt.Errorf("failed to decode polygon node: %w", err)
		}
		return n, nil
	case KindView:
		var n ViewAnnotation
		if err := json.Unmarshal(env.Body, &n); err != nil {
			return nil, fmt.Errorf("failed to decode view node: %w", err)
		}
		return n, nil
	case KindLocationIndicator:
		var n LocationIndicator
		if err := json.Unmarshal(env.Body, &n); err != nil {
			return nil, fmt.Errorf("failed to decode location indicator node: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", env.Kind)
	}
}
