package combo

import (
	"combo/internal/graph"
	"combo/internal/lattice"
)

// propagatePartition runs spec.md §4.4 steps 2-7 for one partition popped
// from the cprop list.
func (e *Engine) propagatePartition(p *Partition) {
	repOp := graph.OpOther
	hasRepOp := false
	if rep := p.representative(); rep != nil {
		repOp, hasRepOp = rep.Node.Op, true
	}

	oldTypeIsTopOrConst := p.typeIsTopOrConst
	var fallen []*Record

	for {
		x := p.popInnerCprop()
		if x == nil {
			break
		}

		if x.isFollower && e.identity(x.Node) == x.Node {
			p.promoteToLeader(x)
			e.reclassifyOperandEdges(x, true)
			if hasRepOp && x.Node.Op != repOp {
				fallen = append(fallen, x)
			}
			if x.Node.Op == graph.OpPhi {
				e.queueWorklist(p)
			}
		}

		old := x.Type
		next := e.compute(x)
		e.assertMonotonic(x, old, next)
		if !lattice.Equal(old, next) {
			x.Type = next
			e.onTypeChanged(x)
		}
	}

	if len(fallen) > 0 {
		e.report.Splits++
		e.splitOut(p, fallen)
	}

	if oldTypeIsTopOrConst {
		e.demoteCollapsedLeaders(p)
	}

	p.recomputeTypeIsTopOrConst()
	e.splitBy(p)
}

// popInnerCprop pops one record from X's inner cprop lists, preferring
// ordinary data nodes over Cond/Switch/their Projs (spec.md §4.4 step 2,
// §5's ordering guarantee). Clearing onCprop here, rather than in the
// caller, is what lets a popped record be enqueued again by something
// this same propagation step touches.
func (p *Partition) popInnerCprop() *Record {
	if len(p.innerCprop) > 0 {
		x := p.innerCprop[0]
		p.innerCprop = p.innerCprop[1:]
		x.onCprop = false
		return x
	}
	if len(p.innerCpropCtrl) > 0 {
		x := p.innerCpropCtrl[0]
		p.innerCpropCtrl = p.innerCpropCtrl[1:]
		x.onCprop = false
		return x
	}
	return nil
}

// onTypeChanged implements spec.md §4.4 step 4's fan-out: every user of x
// is re-queued. Projs of a tuple-moded predecessor are already ordinary
// def-use users here, so they fall out of the plain edge walk; a Block's
// attached Phis are not (Node.Block isn't a def-use edge), so they are
// enqueued from the side index built at initialization. A Block's Preds
// entries are control nodes reached the same way — named by the field, not
// by a def-use edge back to the Block — so a changed control node (a
// resolved Cond/Switch Proj, most commonly) also needs to re-enqueue every
// Block that names it in Preds, via the blockPreds side index, and those
// Blocks' own attached Phis: computePhi re-reads per-predecessor
// reachability directly out of Preds, so a Phi can need re-evaluation even
// when its owning Block's own aggregate Reachable/Top type does not move.
func (e *Engine) onTypeChanged(x *Record) {
	for _, ed := range x.outEdges {
		e.enqueueCprop(ed.user)
	}
	if x.Node.Op == graph.OpBlock {
		for _, phi := range e.blockPhis[x.Node] {
			e.enqueueCprop(phi)
		}
	}
	for _, blk := range e.blockPreds[x.Node] {
		e.enqueueCprop(blk)
		for _, phi := range e.blockPhis[blk.Node] {
			e.enqueueCprop(phi)
		}
	}
}

// demoteCollapsedLeaders implements spec.md §4.4 step 6: once a partition
// that used to be all Top/Constant has finished this round's propagation,
// any leader whose identity() now names another node in the same
// partition is demoted to follower.
func (e *Engine) demoteCollapsedLeaders(p *Partition) {
	for _, l := range append([]*Record(nil), p.Leaders...) {
		model := e.identity(l.Node)
		if model == l.Node {
			continue
		}
		if e.records[model].partition != p {
			continue
		}
		p.demoteToFollower(l)
		e.reclassifyOperandEdges(l, false)
		e.report.PartitionsCollapsed++
	}
}
