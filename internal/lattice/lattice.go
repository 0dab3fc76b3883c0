// Package lattice implements the data-value lattice spec.md §3 defines:
// Top / Constant(tarval) / SymConst(entity) / Bottom for data values, and
// Reachable / Unreachable for control-flow-mode nodes (Block, ProjX).
//
// The five/six-way tagged union is modeled the way the teacher's own
// discriminated unions are (a Kind tag switched on, e.g.
// internal/ir/types.go's Instruction/Terminator interfaces, or
// momchil-velikov-go's three-level sccp.go latticeKind generalized here to
// the richer lattice this spec needs), rather than as a Go interface per
// variant — the set of variants is closed and small, and every transfer
// function needs to pattern-match on all of them together.
package lattice

import (
	"fmt"

	"combo/internal/tarval"
)

// Kind discriminates an Element's variant.
type Kind int

const (
	Top Kind = iota
	Constant
	SymConst
	Bottom
	Reachable
	Unreachable
)

func (k Kind) String() string {
	switch k {
	case Top:
		return "Top"
	case Constant:
		return "Constant"
	case SymConst:
		return "SymConst"
	case Bottom:
		return "Bottom"
	case Reachable:
		return "Reachable"
	case Unreachable:
		return "Unreachable"
	default:
		return "?"
	}
}

// Element is one lattice value attached to a node record.
type Element struct {
	Kind Kind
	// Val holds the payload for Constant/SymConst; for Constant it is an
	// int/bool tarval.Value, for SymConst an entity tarval.Value.
	Val tarval.Value
}

var (
	TopElem         = Element{Kind: Top}
	BottomElem      = Element{Kind: Bottom}
	ReachableElem   = Element{Kind: Reachable}
	UnreachableElem = Element{Kind: Unreachable}
)

// ConstElem wraps a concrete tarval as a data Constant.
func ConstElem(v tarval.Value) Element { return Element{Kind: Constant, Val: v} }

// SymConstElem wraps an entity tarval as a SymConst.
func SymConstElem(v tarval.Value) Element { return Element{Kind: SymConst, Val: v} }

func (e Element) String() string {
	switch e.Kind {
	case Constant, SymConst:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Val)
	default:
		return e.Kind.String()
	}
}

func (e Element) IsTopOrConstant() bool {
	return e.Kind == Top || e.Kind == Constant
}

func (e Element) IsControlFlow() bool {
	return e.Kind == Reachable || e.Kind == Unreachable
}

// Equal reports whether two elements carry the same information (same Kind,
// and for Constant/SymConst the same payload).
func Equal(a, b Element) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Constant, SymConst:
		return a.Val.Equal(b.Val)
	default:
		return true
	}
}

// Meet implements spec.md §3's meet table:
//
//	Top ∧ x = x; Bottom ∧ x = Bottom.
//	Constant(a) ∧ Constant(b) = Constant(a) if a = b else Bottom.
//	SymConst similarly; Constant ∧ SymConst = Bottom.
//	Reachable ∧ Unreachable = Reachable (Reachable is the control-flow
//	sub-lattice's join-bottom).
func Meet(a, b Element) Element {
	if a.Kind == Top {
		return b
	}
	if b.Kind == Top {
		return a
	}
	if a.Kind == Bottom || b.Kind == Bottom {
		return BottomElem
	}
	if a.IsControlFlow() || b.IsControlFlow() {
		if a.Kind == Reachable || b.Kind == Reachable {
			return ReachableElem
		}
		return UnreachableElem
	}
	if a.Kind != b.Kind {
		// Constant meets SymConst (or vice versa): over-determined.
		return BottomElem
	}
	if a.Val.Equal(b.Val) {
		return a
	}
	return BottomElem
}

// Monotonic implements spec.md §4.1's check: a transition from x to y is
// permitted iff x = Top, or y = Bottom, or x = y. The control-flow
// sub-lattice (Top > Unreachable > Reachable, per invariant 6 "once a block
// becomes Reachable, it stays Reachable") reuses the same rule with
// Reachable standing in for Bottom's role as the terminal, most-determined
// state.
func Monotonic(x, y Element) bool {
	if x.Kind == Top {
		return true
	}
	if Equal(x, y) {
		return true
	}
	if y.Kind == Bottom {
		return true
	}
	if y.Kind == Reachable {
		return true
	}
	return false
}
