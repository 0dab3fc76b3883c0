package graph

import "combo/internal/tarval"

// The interfaces below document the external-collaborator boundary
// spec.md §6 draws around the core: IR construction/verification,
// per-opcode tarval arithmetic, dump/debug hooks, and the pass manager are
// all out of scope for the combo engine itself, which consumes only these
// capabilities. *Graph implements all of them. internal/combo itself holds
// the concrete *graph.Graph and calls its methods directly rather than
// going through these interfaces.

// NodeWalker walks all nodes. A block's control-flow predecessors are read
// from Node.Preds, not through this interface.
type NodeWalker interface {
	Walk() []*Node
}

// ComputedValuer is the computed_value(n) oracle.
type ComputedValuer interface {
	ComputedValue(n *Node) tarval.Value
}

// GraphMutator is the apply phase's rewrite surface: replace a node,
// rewrite an input vector, add a keep-alive.
type GraphMutator interface {
	ReplaceWith(old, replacement *Node)
	SetInputs(n *Node, inputs []*Node)
	AddKeepAlive(n *Node)
	RemoveKeepAliveIf(pred func(*Node) bool)
}

// Host bundles the capabilities combo.Run needs from its IR.
type Host interface {
	NodeWalker
	ComputedValuer
	GraphMutator
}

var _ Host = (*Graph)(nil)
