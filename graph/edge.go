package graph

import "fmt"

// Edge represents a directed, typed relationship between two nodes.
// Multi-edges are permitted: any number of edges may connect the same
// (source, target) pair as long as each edge id is unique.
type Edge struct {
	// ID is the unique edge identifier.
	ID string `json:"id"`

	// Source is the origin node ID.
	Source string `json:"source"`

	// Target is the destination node ID.
	Target string `json:"target"`

	// Type describes the relationship (e.g., "attributed_to", "communicates_with").
	Type string `json:"type"`

	// Weight is the traversal cost used by shortest-path algorithms.
	// Values <= 0 are treated as the default weight of 1.
	Weight float64 `json:"weight,omitempty"`

	// Properties contains optional relationship metadata.
	Properties map[string]any `json:"properties,omitempty"`
}

// NewEdge creates a new Edge with the specified id, endpoints, and type.
// The edge carries the default weight until WithWeight is called.
func NewEdge(id, source, target, edgeType string) *Edge {
	return &Edge{
		ID:         id,
		Source:     source,
		Target:     target,
		Type:       edgeType,
		Properties: make(map[string]any),
	}
}

// WithWeight sets the edge weight and returns the edge for method chaining.
func (e *Edge) WithWeight(w float64) *Edge {
	e.Weight = w
	return e
}

// WithProperty adds a single property to the edge and returns the edge for chaining.
func (e *Edge) WithProperty(key string, value any) *Edge {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[key] = value
	return e
}

// WithProperties sets multiple properties on the edge and returns the edge for chaining.
// This replaces any existing properties.
func (e *Edge) WithProperties(props map[string]any) *Edge {
	e.Properties = props
	return e
}

// Cost returns the effective traversal cost of the edge.
// Edges without an explicit positive weight cost 1.
func (e *Edge) Cost() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// Validate checks that the edge has all required fields populated.
// Returns an error if ID, Source, Target, or Type are empty.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("edge ID cannot be empty")
	}
	if e.Source == "" {
		return fmt.Errorf("edge Source cannot be empty")
	}
	if e.Target == "" {
		return fmt.Errorf("edge Target cannot be empty")
	}
	if e.Type == "" {
		return fmt.Errorf("edge Type cannot be empty")
	}
	return nil
}

// clone returns a shallow copy of the edge with a copied property map.
func (e *Edge) clone() *Edge {
	c := &Edge{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Type:   e.Type,
		Weight: e.Weight,
	}
	if e.Properties != nil {
		c.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			c.Properties[k] = v
		}
	}
	return c
}
