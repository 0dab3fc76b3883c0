package combo

import (
	"combo/internal/graph"
	"combo/internal/lattice"
)

// identity implements spec.md §4.2: returns the node n is syntactically
// equal to under current partitions, or n itself if no such follower
// relationship is (yet) recognized.
//
// Float-valued arithmetic never takes the neutral-operand/self-cancelling
// shortcuts here (spec.md: "Float-valued variants are suppressed when the
// graph's FP model forbids strict-algebraic rewrites") — this host graph
// has no relaxed-FP flag to consult, so it conservatively always forbids
// them, matching the safer of the two behaviors the spec allows.
func (e *Engine) identity(n *graph.Node) *graph.Node {
	switch n.Op {
	case graph.OpPhi:
		return e.identityPhi(n)
	case graph.OpMul, graph.OpAdd, graph.OpOr, graph.OpEor:
		if n.Mode.IsFloat() {
			return n
		}
		if other, ok := e.neutralOperand(n); ok {
			return other
		}
		return n
	case graph.OpAnd:
		left, right := n.Input(0), n.Input(1)
		if e.isAllOnes(right) {
			return left
		}
		if e.isAllOnes(left) {
			return right
		}
		return n
	case graph.OpSub, graph.OpShl, graph.OpShr:
		if n.Mode.IsFloat() {
			return n
		}
		if e.isZero(n.Input(1)) {
			return n.Input(0)
		}
		return n
	case graph.OpConfirm:
		return n.Input(0)
	case graph.OpMux:
		if e.samePartition(n.Input(1), n.Input(2)) {
			return n.Input(1)
		}
		return n
	default:
		return n
	}
}

// identityPhi implements spec.md §4.2's Phi rule: if the only Reachable
// predecessors supply operands from a single partition, return one of
// them.
func (e *Engine) identityPhi(n *graph.Node) *graph.Node {
	block := n.Block
	var model *graph.Node
	for i, pred := range block.Preds {
		if e.typeOf(pred).Kind != lattice.Reachable {
			continue
		}
		in := n.Input(i)
		if in == nil {
			return n
		}
		if model == nil {
			model = in
			continue
		}
		if !e.samePartition(model, in) {
			return n
		}
	}
	if model == nil {
		return n
	}
	return model
}

// neutralOperand reports whether one operand of a commutative arithmetic
// node is the opcode's neutral constant (0 for Add/Eor/Or, 1 for Mul), and
// if so returns the other operand.
func (e *Engine) neutralOperand(n *graph.Node) (*graph.Node, bool) {
	left, right := n.Input(0), n.Input(1)
	isNeutralConst := e.isZero
	if n.Op == graph.OpMul {
		isNeutralConst = e.isOne
	}
	if isNeutralConst(right) {
		return left, true
	}
	if isNeutralConst(left) {
		return right, true
	}
	return nil, false
}

func (e *Engine) isZero(n *graph.Node) bool {
	t := e.typeOf(n)
	return t.Kind == lattice.Constant && !t.Val.IsBool() && t.Val.Uint() == 0
}

func (e *Engine) isOne(n *graph.Node) bool {
	t := e.typeOf(n)
	return t.Kind == lattice.Constant && !t.Val.IsBool() && t.Val.Uint() == 1
}

func (e *Engine) isAllOnes(n *graph.Node) bool {
	t := e.typeOf(n)
	if t.Kind != lattice.Constant || t.Val.IsBool() {
		return false
	}
	width := n.Mode.Width
	all := uint64(1)<<uint(width) - 1
	if width <= 0 || width >= 64 {
		all = ^uint64(0)
	}
	return t.Val.Uint() == all
}
