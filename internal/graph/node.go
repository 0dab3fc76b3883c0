package graph

import "combo/internal/tarval"

// ProjKind distinguishes what a Proj node projects, since spec.md §4.1
// gives Cond/Switch/general/memory Projs each their own transfer rule.
type ProjKind int

const (
	ProjCondFalse ProjKind = iota
	ProjCondTrue
	ProjSwitchCase
	ProjSwitchDefault
	ProjGeneral
	ProjMemory
)

// Edge is one def-use edge: node n is used by User at input index Index.
type Edge struct {
	User  *Node
	Index int
}

// Node is one IR node: opcode, mode, ordered operand edges, and the
// opcode-specific attributes spec.md §4.1's transfer rules read. Unused
// fields for a given opcode are simply zero; this mirrors how compact,
// single-struct IR nodes are modeled once attribute variety is this
// bounded (the teacher's own per-opcode Instruction types are one valid
// alternative, used when arity/attribute shapes vary far more than here).
type Node struct {
	ID    int
	Op    Opcode
	Mode  Mode
	Name  string // optional, for dump/debug only
	Block *Node  // owning block; nil for Block nodes themselves

	Inputs []*Node

	// Cmp / Confirm
	Relation tarval.Relation

	// Const
	ConstVal tarval.Value

	// SymConst
	Entity tarval.Entity

	// Proj
	ProjKind  ProjKind
	CaseValue int64

	// Switch: the full set of non-default case values, needed by its
	// default Proj to know whether a constant selector is covered by some
	// other case (spec.md §4.1 "Proj of Switch").
	Cases []int64

	// Confirm: true when the bound operand (Inputs[1]) is a compile-time
	// constant the relation is checked against.
	ConfirmBoundIsConst bool

	// Block
	IsEntry  bool
	Labelled bool
	Preds    []*Node // control-flow predecessors, index-aligned with this
	// block's Phis' operand order.

	uses []Edge
}

// Uses returns a snapshot of n's def-use edges. The combo engine keeps its
// own sorted/segregated copy (spec.md §4.8); this is the graph's
// source-of-truth list the engine's node records are initialized from.
func (n *Node) Uses() []Edge {
	out := make([]Edge, len(n.uses))
	copy(out, n.uses)
	return out
}

func (n *Node) addUse(user *Node, index int) {
	n.uses = append(n.uses, Edge{User: user, Index: index})
}

func (n *Node) removeUse(user *Node, index int) {
	for i, e := range n.uses {
		if e.User == user && e.Index == index {
			n.uses = append(n.uses[:i], n.uses[i+1:]...)
			return
		}
	}
}

// Arity returns the number of operand edges.
func (n *Node) Arity() int { return len(n.Inputs) }

// Input returns the operand at index i, or nil if out of range.
func (n *Node) Input(i int) *Node {
	if i < 0 || i >= len(n.Inputs) {
		return nil
	}
	return n.Inputs[i]
}
