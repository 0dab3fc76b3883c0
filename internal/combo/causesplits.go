package combo

import "combo/internal/graph"

// causeSplits implements spec.md §4.5: for each input index from X's
// widest user arity down to the control-flow sentinel -1, walk X's
// leaders/followers and bucket their users (by the users' current
// partition) into a touched list; any partition whose touched count is a
// proper non-empty subset of its leaders gets split into (touched, rest).
func (e *Engine) causeSplits(x *Partition) {
	maxInputs := x.widestUserArity()
	for idx := maxInputs; idx >= -1; idx-- {
		e.collectTouched(x, idx)
		e.splitTouchedPartitions()
	}
}

// widestUserArity scans x's members' users for the largest input arity,
// the upper bound spec.md §4.5 iterates input indices down from
// ("max_user_inputs").
func (p *Partition) widestUserArity() int {
	max := 0
	for _, list := range [][]*Record{p.Leaders, p.Followers} {
		for _, m := range list {
			for _, ed := range m.outEdges {
				if n := ed.user.Node.Arity(); n > max {
					max = n
				}
			}
		}
	}
	return max
}

// collectTouched walks every out-edge of every member of x once per input
// index (spec.md's node-record next_edge cursor is kept on Record for
// grounding fidelity but is not used here to resume a partial scan across
// calls — this pass rescans x's full edge list per index instead, a
// simplicity-over-micro-optimization tradeoff noted in DESIGN.md).
func (e *Engine) collectTouched(x *Partition, idx int) {
	members := append(append([]*Record(nil), x.Leaders...), x.Followers...)
	for _, m := range members {
		for _, ed := range m.outEdges {
			user := ed.user
			if !e.usesAtIndex(user.Node, m.Node, idx) {
				continue
			}
			e.touch(user)
		}
	}
}

// usesAtIndex reports whether user refers to operand at input position
// idx (idx == -1 standing for the control-flow/Block predecessor).
// For a commutative opcode, idx 0 and idx 1 both match operand in either
// slot, so such a user is touched whichever side operand sits on. The
// touched list is not further divided by operand pair: op(a,a) and
// op(a,b) land in the same touched group here, and only splitBy's
// inputPartitionKey (which normalizes the 0/1 pair) tells them apart.
func (e *Engine) usesAtIndex(user, operand *graph.Node, idx int) bool {
	if idx == -1 {
		return user.Block == operand && !e.cfg.GlobalCSE
	}
	if idx >= len(user.Inputs) {
		return false
	}
	if user.Inputs[idx] == operand {
		return true
	}
	if user.Op.IsCommutative() && (idx == 0 || idx == 1) {
		other := 1 - idx
		return other < len(user.Inputs) && user.Inputs[other] == operand
	}
	return false
}

func (e *Engine) touch(r *Record) {
	p := r.partition
	if !r.onTouched {
		r.onTouched = true
		p.touched = append(p.touched, r)
		p.touchCount++
	}
	if !p.onTouched {
		p.onTouched = true
	}
}

// splitTouchedPartitions implements spec.md §4.5's closing rule: for each
// partition with a non-empty, proper touched subset of its leaders, split
// into (touched, rest); reset bookkeeping either way.
func (e *Engine) splitTouchedPartitions() {
	touchedPartitions := e.arena.partitions
	for _, p := range touchedPartitions {
		if !p.onTouched {
			continue
		}
		if p.touchCount > 0 && p.touchCount < len(p.Leaders) {
			set := make([]*Record, 0, p.touchCount)
			for _, r := range p.touched {
				if !r.isFollower {
					set = append(set, r)
				}
			}
			if len(set) > 0 && len(set) < len(p.Leaders) {
				e.splitOut(p, set)
			}
		}
		for _, r := range p.touched {
			r.onTouched = false
		}
		p.touched = nil
		p.touchCount = 0
		p.onTouched = false
	}
}
