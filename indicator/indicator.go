package indicator

import (
	"fmt"

	"github.com/zero-day-ai/threatgraph/graph"
)

// Relation links an indicator to another indicator in the same feed.
type Relation struct {
	// TargetID is the id of the related indicator.
	TargetID string `json:"target_id"`

	// Type is the relationship label (e.g., "attributed_to", "resolves_to").
	// Defaults to "related_to" when empty.
	Type string `json:"type,omitempty"`

	// Weight is the optional relationship strength used as edge weight.
	Weight float64 `json:"weight,omitempty"`

	// Properties contains optional relationship metadata.
	Properties map[string]any `json:"properties,omitempty"`
}

// Indicator is a single threat-intelligence record as delivered by a feed.
// Indicators are the bulk-construction input for building threat graphs.
type Indicator struct {
	// ID uniquely identifies the indicator within the feed. A uuid is
	// generated during graph construction when empty.
	ID string `json:"id"`

	// Type is the entity category. Unrecognized or empty values map to
	// the generic indicator node type.
	Type string `json:"type,omitempty"`

	// Value is the observable itself (hash, domain, IP, actor name).
	Value string `json:"value,omitempty"`

	// Source names the feed or report the indicator came from.
	Source string `json:"source,omitempty"`

	// Confidence is the feed's confidence in the indicator, 0-100.
	Confidence float64 `json:"confidence,omitempty"`

	// Labels are auxiliary tags carried onto the graph node.
	Labels []string `json:"labels,omitempty"`

	// Properties contains arbitrary extra metadata.
	Properties map[string]any `json:"properties,omitempty"`

	// Related lists relationships to other indicators in the feed.
	Related []Relation `json:"related,omitempty"`
}

// NewIndicator creates an indicator with the given id, type, and value.
func NewIndicator(id, indicatorType, value string) *Indicator {
	return &Indicator{
		ID:         id,
		Type:       indicatorType,
		Value:      value,
		Properties: make(map[string]any),
	}
}

// WithSource sets the feed name and returns the indicator for chaining.
func (in *Indicator) WithSource(source string) *Indicator {
	in.Source = source
	return in
}

// WithConfidence sets the confidence score and returns the indicator for chaining.
func (in *Indicator) WithConfidence(confidence float64) *Indicator {
	in.Confidence = confidence
	return in
}

// WithLabel appends a label and returns the indicator for chaining.
func (in *Indicator) WithLabel(label string) *Indicator {
	in.Labels = append(in.Labels, label)
	return in
}

// WithProperty sets a property and returns the indicator for chaining.
func (in *Indicator) WithProperty(key string, value any) *Indicator {
	if in.Properties == nil {
		in.Properties = make(map[string]any)
	}
	in.Properties[key] = value
	return in
}

// WithRelation appends a relation and returns the indicator for chaining.
func (in *Indicator) WithRelation(targetID, relType string) *Indicator {
	in.Related = append(in.Related, Relation{TargetID: targetID, Type: relType})
	return in
}

// nodeType maps the free-form indicator type onto the graph taxonomy,
// falling back to the generic indicator category.
func (in *Indicator) nodeType() graph.NodeType {
	if t, err := graph.ParseNodeType(in.Type); err == nil {
		return t
	}
	return graph.NodeTypeIndicator
}

// Validate checks the indicator is usable for graph construction.
func (in *Indicator) Validate() error {
	if in.ID == "" && in.Value == "" {
		return fmt.Errorf("indicator needs an id or a value")
	}
	return nil
}
