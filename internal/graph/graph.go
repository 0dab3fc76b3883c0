package graph

import "combo/internal/tarval"

// ComputedValueFunc is the host-supplied computed_value(node) oracle
// spec.md §1/§6 names: it folds an opcode-specific expression to a tarval
// when it can, otherwise returns tarval.Bad.
type ComputedValueFunc func(n *Node) tarval.Value

// Graph is the concrete host IR the combo engine runs over: all nodes, the
// entry block, the End node (keep-alives), and the computed_value oracle.
// It implements NodeWalker, ComputedValuer and GraphMutator from
// interfaces.go.
type Graph struct {
	Nodes     []*Node
	Entry     *Node // entry Block
	End       *Node // End node
	GlobalCSE bool  // spec.md §6's knob; internal/combo does not read it and uses config.Config.GlobalCSE instead

	oracle    ComputedValueFunc
	keepAlive []*Node
	nextID    int
}

// New creates an empty graph with the given computed_value oracle. A host
// that never folds anything may pass nil; the engine treats that as always
// returning tarval.Bad.
func New(oracle ComputedValueFunc) *Graph {
	if oracle == nil {
		oracle = func(*Node) tarval.Value { return tarval.Bad }
	}
	return &Graph{oracle: oracle}
}

// NewNode allocates and registers a node in the graph, wiring its operand
// def-use edges.
func (g *Graph) NewNode(op Opcode, mode Mode, inputs ...*Node) *Node {
	n := &Node{ID: g.nextID, Op: op, Mode: mode, Inputs: inputs}
	g.nextID++
	g.Nodes = append(g.Nodes, n)
	for i, in := range inputs {
		if in != nil {
			in.addUse(n, i)
		}
	}
	return n
}

// Walk returns all nodes in the graph (spec.md §6 "walk all nodes").
func (g *Graph) Walk() []*Node { return g.Nodes }

// ComputedValue consults the external oracle (spec.md §6).
func (g *Graph) ComputedValue(n *Node) tarval.Value { return g.oracle(n) }

// ReplaceWith rewrites every use of old to point at replacement instead,
// maintaining def-use edges on both sides (spec.md §6 "ability to replace
// a node with another").
func (g *Graph) ReplaceWith(old, replacement *Node) {
	if old == replacement {
		return
	}
	for _, e := range old.Uses() {
		e.User.Inputs[e.Index] = replacement
		old.removeUse(e.User, e.Index)
		replacement.addUse(e.User, e.Index)
	}
}

// SetInputs replaces n's operand vector wholesale (spec.md §6 "set a
// node's input vector"), used by the apply phase to shrink Phis. Block
// predecessor lists live in Node.Preds and are assigned directly.
func (g *Graph) SetInputs(n *Node, inputs []*Node) {
	for i, old := range n.Inputs {
		if old != nil {
			old.removeUse(n, i)
		}
	}
	n.Inputs = inputs
	for i, in := range inputs {
		if in != nil {
			in.addUse(n, i)
		}
	}
}

// AddKeepAlive appends a node to End's keep-alive list if not already
// present (spec.md §6 "add a keep-alive to End").
func (g *Graph) AddKeepAlive(n *Node) {
	for _, k := range g.keepAlive {
		if k == n {
			return
		}
	}
	g.keepAlive = append(g.keepAlive, n)
}

// KeepAlives returns the current keep-alive list.
func (g *Graph) KeepAlives() []*Node { return g.keepAlive }

// RemoveKeepAliveIf deletes keep-alive entries for which pred returns true
// (apply phase step 4: drop keep-alives that ended up in an Unreachable
// block).
func (g *Graph) RemoveKeepAliveIf(pred func(*Node) bool) {
	out := g.keepAlive[:0]
	for _, k := range g.keepAlive {
		if !pred(k) {
			out = append(out, k)
		}
	}
	g.keepAlive = out
}

// RemoveNode deletes a node from the graph's node list. The apply phase
// does not call it; replaced nodes stay in the list with no remaining uses.
func (g *Graph) RemoveNode(n *Node) {
	for i, x := range g.Nodes {
		if x == n {
			g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
			return
		}
	}
}
