package combo

import (
	"combo/internal/graph"
	"combo/internal/lattice"
	"combo/internal/tarval"
)

// compute re-derives r's lattice element from its current inputs,
// implementing spec.md §4.1. Apart from initialize seeding every node once,
// the engine calls this only when at least one input's element has changed
// (enforced by the propagation engine, not here).
func (e *Engine) compute(r *Record) lattice.Element {
	n := r.Node
	switch n.Op {
	case graph.OpBlock:
		return e.computeBlock(n)
	case graph.OpJmp:
		return e.typeOf(n.Block)
	case graph.OpPhi:
		return e.computePhi(n)
	case graph.OpAdd, graph.OpSub, graph.OpEor, graph.OpAnd, graph.OpOr, graph.OpMul, graph.OpShl, graph.OpShr:
		return e.computeArith(n)
	case graph.OpCmp:
		return e.computeCmp(n)
	case graph.OpSymConst:
		return e.computeSymConst(n)
	case graph.OpProj:
		return e.computeProj(n)
	case graph.OpBad:
		return lattice.TopElem
	case graph.OpUnknown:
		if e.cfg.UnknownIsTop {
			return lattice.TopElem
		}
		return lattice.BottomElem
	case graph.OpCall:
		return lattice.BottomElem
	case graph.OpReturn, graph.OpEnd:
		return lattice.ReachableElem
	case graph.OpConfirm:
		return e.computeConfirm(n)
	case graph.OpMux:
		return e.computeMux(n)
	case graph.OpConst:
		return lattice.ConstElem(n.ConstVal)
	default:
		return e.defaultCompute(n)
	}
}

// defaultCompute implements spec.md §4.1's fallback rule: Top if any data
// input is Top, else consult the computed_value oracle.
func (e *Engine) defaultCompute(n *graph.Node) lattice.Element {
	for _, in := range n.Inputs {
		if in == nil || in.Mode.Kind == graph.ModeControl || in.Mode.Kind == graph.ModeMemory {
			continue
		}
		if e.typeOf(in).Kind == lattice.Top {
			return lattice.TopElem
		}
	}
	tv := e.g.ComputedValue(n)
	if tv.IsBad() {
		return lattice.BottomElem
	}
	if n.Mode.Kind == graph.ModeBool {
		return lattice.ConstElem(tv)
	}
	return lattice.ConstElem(tv)
}

func (e *Engine) computeBlock(n *graph.Node) lattice.Element {
	if n.IsEntry || n.Labelled {
		return lattice.ReachableElem
	}
	for _, pred := range n.Preds {
		if e.typeOf(pred).Kind == lattice.Reachable {
			return lattice.ReachableElem
		}
	}
	return lattice.TopElem
}

// computePhi implements spec.md §4.1: Top if the owning block is not
// Reachable (computeBlock types a block Top until it becomes Reachable,
// never Unreachable); otherwise meet the
// types of inputs whose corresponding predecessor is Reachable, ignoring
// Top inputs, empty set -> Top, unequal constants -> Bottom (Meet already
// yields Bottom for that case).
func (e *Engine) computePhi(n *graph.Node) lattice.Element {
	block := n.Block
	if e.typeOf(block).Kind != lattice.Reachable {
		return lattice.TopElem
	}
	result := lattice.TopElem
	any := false
	for i, pred := range block.Preds {
		if e.typeOf(pred).Kind != lattice.Reachable {
			continue
		}
		in := n.Input(i)
		if in == nil {
			continue
		}
		t := e.typeOf(in)
		if t.Kind == lattice.Top {
			continue
		}
		any = true
		result = lattice.Meet(result, t)
	}
	if !any {
		return lattice.TopElem
	}
	return result
}

// computeArith folds Add/Sub/Eor/And/Or/Mul/Shl/Shr, recognizing neutral
// elements and the same-partition self-identities (spec.md §4.1: "x − x,
// x ⊕ x ... return the algebraic result only if both operands are in the
// same partition ... and the mode is non-floating").
func (e *Engine) computeArith(n *graph.Node) lattice.Element {
	if n.Mode.IsFloat() {
		return e.defaultCompute(n)
	}
	left, right := n.Input(0), n.Input(1)
	lt, rt := e.typeOf(left), e.typeOf(right)

	if lt.Kind == lattice.Top || rt.Kind == lattice.Top {
		return lattice.TopElem
	}

	if e.samePartition(left, right) {
		switch n.Op {
		case graph.OpSub, graph.OpEor:
			return lattice.ConstElem(tarval.Null(n.Mode.Width, n.Mode.Signed))
		}
	}

	if lt.Kind == lattice.Constant && rt.Kind == lattice.Constant {
		a, b := lt.Val, rt.Val
		switch n.Op {
		case graph.OpAdd:
			return lattice.ConstElem(tarval.Add(a, b))
		case graph.OpSub:
			return lattice.ConstElem(tarval.Sub(a, b))
		case graph.OpEor:
			return lattice.ConstElem(tarval.Eor(a, b))
		case graph.OpAnd:
			return lattice.ConstElem(tarval.And(a, b))
		case graph.OpOr:
			return lattice.ConstElem(tarval.Or(a, b))
		case graph.OpMul:
			return lattice.ConstElem(tarval.Int(n.Mode.Width, n.Mode.Signed, a.Uint()*b.Uint()))
		case graph.OpShl:
			return lattice.ConstElem(tarval.Shl(a, b))
		case graph.OpShr:
			return lattice.ConstElem(tarval.Shr(a, b))
		}
	}

	// A neutral constant operand makes n a copy of the other operand.
	if id := e.identity(n); id != n {
		return e.typeOf(id)
	}

	return lattice.BottomElem
}

// computeCmp implements spec.md §4.1's Cmp rule.
func (e *Engine) computeCmp(n *graph.Node) lattice.Element {
	left, right := n.Input(0), n.Input(1)
	lt, rt := e.typeOf(left), e.typeOf(right)
	if lt.Kind == lattice.Top || rt.Kind == lattice.Top {
		return lattice.TopElem
	}
	if lt.Kind == lattice.Constant && rt.Kind == lattice.Constant {
		return lattice.ConstElem(tarval.Bool(tarval.Compare(n.Relation, lt.Val, rt.Val)))
	}
	if !n.Mode.IsFloat() && e.samePartition(left, right) {
		if n.Relation.IncludesEqual() {
			return lattice.ConstElem(tarval.Bool(true))
		}
		if n.Relation.IsStrict() {
			return lattice.ConstElem(tarval.Bool(false))
		}
	}
	return lattice.BottomElem
}

func (e *Engine) computeSymConst(n *graph.Node) lattice.Element {
	if !n.Entity.Stable() {
		return lattice.BottomElem
	}
	return lattice.SymConstElem(tarval.OfEntity(n.Entity))
}

// computeProj implements spec.md §4.1's three Proj rules: Cond/Switch
// selectors, the Top-predecessor default, and memory Projs pinned to
// Bottom.
func (e *Engine) computeProj(n *graph.Node) lattice.Element {
	pred := n.Input(0)
	switch n.ProjKind {
	case graph.ProjCondTrue, graph.ProjCondFalse:
		return e.computeProjCond(n, pred)
	case graph.ProjSwitchCase, graph.ProjSwitchDefault:
		return e.computeProjSwitch(n, pred)
	case graph.ProjMemory:
		return lattice.BottomElem
	default:
		if e.typeOf(pred).Kind == lattice.Top {
			return lattice.TopElem
		}
		return e.defaultCompute(n)
	}
}

// computeProjCond resolves the DESIGN.md Open-Question decision: once a
// branch has latched Reachable it never reverts (invariant 6); while the
// selector is still Top, BOTH branches read Unreachable (spec.md §4.1's
// deliberate choice so an unresolved predicate doesn't prematurely keep
// both exits alive), matching combo.c's actual compute_Proj_Cond body.
func (e *Engine) computeProjCond(n, cond *graph.Node) lattice.Element {
	if e.records[n].Type.Kind == lattice.Reachable {
		return lattice.ReachableElem
	}
	selector := e.typeOf(cond.Input(0))
	wantTrue := n.ProjKind == graph.ProjCondTrue

	switch selector.Kind {
	case lattice.Constant:
		v := selector.Val.BoolVal()
		if v == wantTrue {
			return lattice.ReachableElem
		}
		return lattice.UnreachableElem
	case lattice.Bottom:
		return lattice.ReachableElem
	default: // Top: both branches unreachable until the selector resolves.
		return lattice.UnreachableElem
	}
}

// computeProjSwitch implements spec.md §4.1's Switch rule: selector
// Bottom/Top -> default Reachable, cases Unreachable; constant selector ->
// walk the case table and flag only the matching entry (or default, if no
// case matches) Reachable.
func (e *Engine) computeProjSwitch(n, sw *graph.Node) lattice.Element {
	if e.records[n].Type.Kind == lattice.Reachable {
		return lattice.ReachableElem
	}
	selector := e.typeOf(sw.Input(0))
	switch selector.Kind {
	case lattice.Constant:
		v := int64(selector.Val.Uint())
		if n.ProjKind == graph.ProjSwitchCase {
			if v == n.CaseValue {
				return lattice.ReachableElem
			}
			return lattice.UnreachableElem
		}
		// default: reachable only if the constant matches no case.
		for _, c := range sw.Cases {
			if c == v {
				return lattice.UnreachableElem
			}
		}
		return lattice.ReachableElem
	default: // Top or Bottom
		if n.ProjKind == graph.ProjSwitchDefault {
			return lattice.ReachableElem
		}
		return lattice.UnreachableElem
	}
}

// computeConfirm implements spec.md §4.1: acts as a copy of its value
// input; if the relation is equality and the bound is a constant, take the
// bound's type.
func (e *Engine) computeConfirm(n *graph.Node) lattice.Element {
	value, bound := n.Input(0), n.Input(1)
	if n.Relation == tarval.Equal && n.ConfirmBoundIsConst {
		return e.typeOf(bound)
	}
	return e.typeOf(value)
}

// computeMux implements a Mux's fold: a constant selector picks a branch
// outright; otherwise behaves like the default opcode rule.
func (e *Engine) computeMux(n *graph.Node) lattice.Element {
	sel := e.typeOf(n.Input(0))
	if sel.Kind == lattice.Constant {
		if sel.Val.BoolVal() {
			return e.typeOf(n.Input(1))
		}
		return e.typeOf(n.Input(2))
	}
	return e.defaultCompute(n)
}

func (e *Engine) typeOf(n *graph.Node) lattice.Element {
	if n == nil {
		return lattice.TopElem
	}
	return e.records[n].Type
}

func (e *Engine) samePartition(a, b *graph.Node) bool {
	if a == nil || b == nil {
		return false
	}
	ra, rb := e.records[a], e.records[b]
	return ra.partition == rb.partition
}
