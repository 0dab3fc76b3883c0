package combo

import (
	"fmt"
	"strings"

	"combo/internal/graph"
)

// splitBy implements spec.md §4.6: refine p by lattice element, then (if
// not already uniformly Top/Constant) by opcode, then by each input
// position's successor partition, highest index first, -1 standing for
// the control-flow predecessor. A group split out via splitOut is fully
// re-refined on the way back out (splitOut itself calls splitBy on the
// new partition), so this function only needs to keep narrowing p's own
// remaining leader set between criteria.
func (e *Engine) splitBy(p *Partition) {
	e.splitByCriterion(p, e.typeKey)
	p.recomputeTypeIsTopOrConst()

	if !p.typeIsTopOrConst {
		e.splitByCriterion(p, e.opcodeKey)
	}

	e.splitByCriterion(p, e.inputPartitionKey)
}

// splitByCriterion groups p's current leaders by keyFn; the first-seen
// key's group stays in p, every other group is split out via splitOut.
func (e *Engine) splitByCriterion(p *Partition, keyFn func(*Record) string) {
	if len(p.Leaders) <= 1 {
		return
	}
	order := make([]string, 0, 4)
	groups := make(map[string][]*Record, 4)
	for _, l := range p.Leaders {
		k := keyFn(l)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], l)
	}
	if len(order) <= 1 {
		return
	}
	for _, k := range order[1:] {
		e.splitOut(p, groups[k])
	}
}

// typeKey implements lambda_type.
func (e *Engine) typeKey(r *Record) string {
	t := r.Type
	if t.Val.IsInt() || t.Val.IsBool() || t.Val.IsEntity() {
		return fmt.Sprintf("%s:%s", t.Kind, t.Val)
	}
	return t.Kind.String()
}

// opcodeKey implements lambda_opcode (spec.md §4.6): opcode, mode, arity,
// plus the payload attribute that opcode's identity depends on (constant
// value, Proj discriminant, Cmp/Confirm relation, SymConst entity).
func (e *Engine) opcodeKey(r *Record) string {
	n := r.Node
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d", n.Op, n.Mode, n.Arity())

	switch n.Op {
	case graph.OpConst:
		fmt.Fprintf(&b, "|%s", n.ConstVal)
	case graph.OpSymConst:
		fmt.Fprintf(&b, "|%s", n.Entity.Name)
	case graph.OpCmp, graph.OpConfirm:
		fmt.Fprintf(&b, "|%d", n.Relation)
	case graph.OpProj:
		fmt.Fprintf(&b, "|%d|%d", n.ProjKind, n.CaseValue)
	}
	return b.String()
}

// inputPartitionKey implements lambda_partition (spec.md §4.6): the
// partition each operand currently belongs to, iterated from the highest
// input index down to -1 (the control predecessor), commutative operand
// pairs 0/1 normalized to (min, max). When global CSE is enabled the
// control component is excluded (spec.md §6's end_idx toggle).
func (e *Engine) inputPartitionKey(r *Record) string {
	n := r.Node
	ids := make([]int, n.Arity())
	for i, in := range n.Inputs {
		ids[i] = e.partitionIDOf(in)
	}
	if n.Op.IsCommutative() && len(ids) >= 2 {
		if ids[0] > ids[1] {
			ids[0], ids[1] = ids[1], ids[0]
		}
	}

	var b strings.Builder
	for i := len(ids) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%d,", ids[i])
	}
	if !e.cfg.GlobalCSE {
		fmt.Fprintf(&b, "ctrl=%d", e.partitionIDOf(n.Block))
	}
	return b.String()
}

func (e *Engine) partitionIDOf(n *graph.Node) int {
	if n == nil {
		return -1
	}
	return e.records[n].partition.id
}
