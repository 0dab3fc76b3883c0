package combo

import (
	"fmt"

	"combo/internal/graph"
	"combo/internal/lattice"
	"combo/internal/tarval"
)

// applyPhase implements spec.md §4.9's five walks, materializing the fixed
// point's findings into actual IR rewrites. It is the only place the
// engine mutates the host graph; everything before it only updated
// Records.
func (e *Engine) applyPhase() {
	kept := e.findKeptMemory()
	e.rewriteBlocks()
	e.rewriteNodes()
	e.g.RemoveKeepAliveIf(func(n *graph.Node) bool {
		return e.typeOf(n.Block).Kind != lattice.Reachable
	})
	for _, m := range kept {
		e.g.AddKeepAlive(m)
	}
}

// findKeptMemory implements step 1: memory-mode nodes that are live but
// whose every user has gone dead, so ordinary dead-code elimination
// downstream of this pass wouldn't otherwise know to keep them alive.
func (e *Engine) findKeptMemory() []*graph.Node {
	var kept []*graph.Node
	for _, n := range e.g.Walk() {
		if n.Mode.Kind != graph.ModeMemory {
			continue
		}
		r := e.records[n]
		if r.Type.Kind == lattice.Top {
			continue
		}
		if e.typeOf(n.Block).Kind != lattice.Reachable {
			continue
		}
		allDead := true
		for _, ed := range r.outEdges {
			u := ed.user
			if u.Type.Kind != lattice.Top && e.typeOf(u.Node.Block).Kind == lattice.Reachable {
				allDead = false
				break
			}
		}
		if allDead {
			kept = append(kept, n)
		}
	}
	return kept
}

// rewriteBlocks implements step 2's predecessor/Phi side: a block's Preds
// list is trimmed to its still-Reachable predecessors and every attached
// Phi's input vector is shrunk in step, one input remaining collapses the
// Phi to that input outright. Block fusion (folding a block into a sole
// plain-Jmp predecessor) is out of scope here: the host graph interface
// (spec.md §6) exposes predecessor walking only, no successor
// enumeration, so there is no sound way to locate "the" successor edge to
// fuse across without guessing; see DESIGN.md.
func (e *Engine) rewriteBlocks() {
	for _, n := range append([]*graph.Node(nil), e.g.Walk()...) {
		if n.Op != graph.OpBlock {
			continue
		}
		if e.typeOf(n).Kind != lattice.Reachable {
			continue
		}

		var keepIdx []int
		var newPreds []*graph.Node
		for i, pred := range n.Preds {
			if e.typeOf(pred).Kind == lattice.Reachable {
				keepIdx = append(keepIdx, i)
				newPreds = append(newPreds, pred)
			}
		}
		if len(keepIdx) == len(n.Preds) {
			continue
		}
		n.Preds = newPreds
		for _, phi := range e.blockPhis[n] {
			e.shrinkPhi(phi, keepIdx)
		}
	}
}

func (e *Engine) shrinkPhi(phi *Record, keepIdx []int) {
	old := phi.Node.Inputs
	newInputs := make([]*graph.Node, len(keepIdx))
	for i, idx := range keepIdx {
		if idx < len(old) {
			newInputs[i] = old[idx]
		}
	}
	e.report.PhisShrunk++
	if len(newInputs) == 1 {
		e.g.ReplaceWith(phi.Node, newInputs[0])
		return
	}
	e.g.SetInputs(phi.Node, newInputs)
}

// rewriteNodes implements step 3: dead-block nodes become Bad; Top-typed
// nodes (excluding memory/tuple/control-Proj) become Unknown; Constant
// and SymConst nodes are materialized; resolved control Projs become
// Jmp; finally every non-leader is replaced by its partition leader.
func (e *Engine) rewriteNodes() {
	resolvedCtrl := make(map[*graph.Node]bool)

	// Pass one: materialize Bad for every node in a dead block, and
	// Unknown/Const/SymConst/Jmp for every other non-follower, recording
	// what each node became so pass two can redirect followers straight to
	// their leader's materialized form instead of re-deriving their own.
	replaced := make(map[*graph.Node]*graph.Node)
	nodes := append([]*graph.Node(nil), e.g.Walk()...)

	for _, n := range nodes {
		r, ok := e.records[n]
		if !ok || n.Op == graph.OpBlock {
			continue
		}

		if n.Block != nil && e.typeOf(n.Block).Kind != lattice.Reachable {
			bad := e.badNode(n.Mode, n.Block)
			e.g.ReplaceWith(n, bad)
			replaced[n] = bad
			continue
		}

		// Followers are left for pass two, which redirects them to their
		// leader's materialization rather than minting one per follower.
		if r.isFollower {
			if leader := r.partition.representative(); leader != nil && leader.Node != n {
				continue
			}
		}

		switch r.Type.Kind {
		case lattice.Top:
			if n.Mode.Kind == graph.ModeMemory || n.Mode.Kind == graph.ModeTuple {
				break
			}
			if n.Op == graph.OpProj && isCondSwitchOrProj(n) {
				break
			}
			u := e.unknownNode(n.Mode, n.Block)
			e.g.ReplaceWith(n, u)
			replaced[n] = u
		case lattice.Constant:
			if n.Op != graph.OpConst && n.Mode.Kind != graph.ModeTuple {
				c := e.constNode(r.Type.Val, n.Mode, n.Block)
				e.g.ReplaceWith(n, c)
				replaced[n] = c
				e.report.ConstantsFolded++
			}
		case lattice.SymConst:
			s := e.symConstNode(r.Type.Val, n.Mode, n.Block)
			e.g.ReplaceWith(n, s)
			replaced[n] = s
		}

		if n.Op == graph.OpProj && isCondSwitchOrProj(n) {
			if pred := n.Input(0); pred != nil && !resolvedCtrl[pred] {
				resolvedCtrl[pred] = true
				e.resolveControlProj(pred)
			}
		}
	}

	// Pass two: every non-leader node is replaced by its partition leader
	// (or the leader's pass-one materialization, if any).
	for _, n := range nodes {
		r, ok := e.records[n]
		if !ok || n.Op == graph.OpBlock || !r.isFollower {
			continue
		}
		leader := r.partition.representative()
		if leader == nil || leader.Node == n {
			continue
		}
		target := leader.Node
		if rep, ok := replaced[leader.Node]; ok {
			target = rep
		}
		e.g.ReplaceWith(n, target)
	}
}

// resolveControlProj implements step 3's ProjX(Cond/Switch) collapse: if
// exactly one of pred's Projs is Reachable, it becomes an unconditional
// Jmp; a constant Switch selector with more than one reachable exit is
// flagged as an upstream anomaly (spec.md §7).
func (e *Engine) resolveControlProj(pred *graph.Node) {
	var reachable []*graph.Node
	for _, u := range pred.Uses() {
		if u.User.Op == graph.OpProj && e.typeOf(u.User).Kind == lattice.Reachable {
			reachable = append(reachable, u.User)
		}
	}
	if len(reachable) == 1 {
		jmp := e.g.NewNode(graph.OpJmp, graph.ControlMode)
		jmp.Block = pred.Block
		e.g.ReplaceWith(reachable[0], jmp)
		e.report.DeadBlocksRemoved++
		return
	}
	if len(reachable) > 1 && pred.Op == graph.OpSwitch {
		sel := e.typeOf(pred.Input(0))
		if sel.Kind == lattice.Constant {
			e.reporter.UnoptimizedCF(nodeLabel(pred))
		}
	}
}

func (e *Engine) badNode(mode graph.Mode, block *graph.Node) *graph.Node {
	n := e.g.NewNode(graph.OpBad, mode)
	n.Block = block
	return n
}

func (e *Engine) unknownNode(mode graph.Mode, block *graph.Node) *graph.Node {
	n := e.g.NewNode(graph.OpUnknown, mode)
	n.Block = block
	return n
}

func (e *Engine) constNode(v tarval.Value, mode graph.Mode, block *graph.Node) *graph.Node {
	n := e.g.NewNode(graph.OpConst, mode)
	n.ConstVal = v
	n.Block = block
	return n
}

func (e *Engine) symConstNode(v tarval.Value, mode graph.Mode, block *graph.Node) *graph.Node {
	n := e.g.NewNode(graph.OpSymConst, mode)
	n.Entity = tarval.NewEntity(fmt.Sprintf("%s", v))
	n.Block = block
	return n
}
