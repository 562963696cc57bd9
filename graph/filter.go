package graph

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// ExprFilter is a compiled CEL node predicate.
//
// Expressions are evaluated against four variables:
//   - id: the node id (string)
//   - kind: the node type (string, e.g. "malware")
//   - labels: the node's labels (list of string, sorted)
//   - props: the node's property map (map of string to dyn)
//
// Example expressions:
//
//	kind == 'actor'
//	kind == 'indicator' && props.confidence >= 80.0
//	'apt' in labels
type ExprFilter struct {
	expr string
	prg  cel.Program
}

// CompileFilter compiles a CEL expression into a reusable node predicate.
// Returns an error if the expression does not compile or does not evaluate
// to a boolean.
func CompileFilter(expr string) (*ExprFilter, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("id", decls.String),
			decls.NewVar("kind", decls.String),
			decls.NewVar("labels", decls.NewListType(decls.String)),
			decls.NewVar("props", decls.NewMapType(decls.String, decls.Dyn)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter program creation error: %w", err)
	}

	return &ExprFilter{expr: expr, prg: prg}, nil
}

// Expr returns the source expression the filter was compiled from.
func (f *ExprFilter) Expr() string {
	return f.expr
}

// Match evaluates the filter against a node.
// Returns an error if evaluation fails or the result is not a boolean.
func (f *ExprFilter) Match(n *Node) (bool, error) {
	labels := make([]string, 0, len(n.Labels))
	for l := range n.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	props := n.Properties
	if props == nil {
		props = map[string]any{}
	}

	out, _, err := f.prg.Eval(map[string]any{
		"id":     n.ID,
		"kind":   n.Type.String(),
		"labels": labels,
		"props":  props,
	})
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed for node %s: %w", n.ID, err)
	}

	match, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q did not evaluate to a boolean", f.expr)
	}
	return match, nil
}

// FilterExpr returns a new Graph narrowed to the nodes matching the given
// CEL expression, with the same edge-survival rule as Filter. Nodes whose
// evaluation errors (e.g. a missing property reference) are excluded.
func FilterExpr(g *Graph, expr string) (*Graph, error) {
	f, err := CompileFilter(expr)
	if err != nil {
		return nil, err
	}
	return Filter(g, func(n *Node) bool {
		match, err := f.Match(n)
		return err == nil && match
	}), nil
}
