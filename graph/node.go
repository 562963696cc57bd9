package graph

import (
	"fmt"
)

// NodeType is the enumerated category of a threat entity.
type NodeType string

const (
	// NodeTypeMalware identifies malware families and samples.
	NodeTypeMalware NodeType = "malware"

	// NodeTypeActor identifies threat actors and intrusion sets.
	NodeTypeActor NodeType = "actor"

	// NodeTypeInfrastructure identifies attacker-controlled infrastructure
	// (C2 servers, staging hosts, registrars).
	NodeTypeInfrastructure NodeType = "infrastructure"

	// NodeTypeCampaign identifies named campaigns or operations.
	NodeTypeCampaign NodeType = "campaign"

	// NodeTypeVictim identifies targeted organizations or sectors.
	NodeTypeVictim NodeType = "victim"

	// NodeTypeIndicator identifies atomic indicators of compromise
	// (hashes, IPs, domains, URLs).
	NodeTypeIndicator NodeType = "indicator"
)

// AllNodeTypes returns all valid node type values.
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeMalware,
		NodeTypeActor,
		NodeTypeInfrastructure,
		NodeTypeCampaign,
		NodeTypeVictim,
		NodeTypeIndicator,
	}
}

// IsValid returns true if the node type is one of the enumerated values.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeMalware, NodeTypeActor, NodeTypeInfrastructure,
		NodeTypeCampaign, NodeTypeVictim, NodeTypeIndicator:
		return true
	}
	return false
}

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// ParseNodeType parses a string into a NodeType value.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid node type: %s", s)
	}
	return t, nil
}

// Node represents an entity vertex in the threat graph.
// Nodes carry an open property bag and an auxiliary label set alongside
// the enumerated entity type.
type Node struct {
	// ID is the unique node identifier. Immutable once the node is added
	// to a Graph.
	ID string `json:"id"`

	// Type is the enumerated entity category (malware, actor, ...).
	Type NodeType `json:"type"`

	// Properties contains arbitrary key-value metadata for the node.
	Properties map[string]any `json:"properties,omitempty"`

	// Labels is a set of auxiliary tags attached to the node.
	Labels map[string]struct{} `json:"labels,omitempty"`
}

// NewNode creates a new Node with the given id and type.
// The Properties map and Labels set are initialized empty.
func NewNode(id string, nodeType NodeType) *Node {
	return &Node{
		ID:         id,
		Type:       nodeType,
		Properties: make(map[string]any),
		Labels:     make(map[string]struct{}),
	}
}

// WithProperty sets a single property and returns the node for method chaining.
// If the Properties map is nil, it will be initialized.
func (n *Node) WithProperty(key string, value any) *Node {
	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}
	n.Properties[key] = value
	return n
}

// WithProperties sets multiple properties and returns the node for method chaining.
// This replaces the entire Properties map.
func (n *Node) WithProperties(props map[string]any) *Node {
	n.Properties = props
	return n
}

// WithLabel adds a label to the node's label set and returns the node for chaining.
func (n *Node) WithLabel(label string) *Node {
	if n.Labels == nil {
		n.Labels = make(map[string]struct{})
	}
	n.Labels[label] = struct{}{}
	return n
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	_, ok := n.Labels[label]
	return ok
}

// Validate checks that the node has all required fields set correctly.
// Returns an error if ID is empty or Type is not a valid node type.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node ID cannot be empty")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("invalid node type: %s", n.Type)
	}
	return nil
}

// clone returns a shallow copy of the node with copied property and label maps.
func (n *Node) clone() *Node {
	c := &Node{
		ID:   n.ID,
		Type: n.Type,
	}
	if n.Properties != nil {
		c.Properties = make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	if n.Labels != nil {
		c.Labels = make(map[string]struct{}, len(n.Labels))
		for l := range n.Labels {
			c.Labels[l] = struct{}{}
		}
	}
	return c
}
