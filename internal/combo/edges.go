package combo

// reclassifyEdge moves the def-use edge from owner to user between the
// follower prefix and the sorted leader suffix of owner.outEdges (spec.md
// §4.8), following a follower<->leader role change of user.
func (e *Engine) reclassifyEdge(owner, user *Record, toLeader bool) {
	idx := -1
	for i, ed := range owner.outEdges {
		if ed.user == user {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	ed := owner.outEdges[idx]
	owner.outEdges = append(owner.outEdges[:idx], owner.outEdges[idx+1:]...)
	if idx < owner.nFollowers {
		owner.nFollowers--
	}

	if toLeader {
		pos := owner.nFollowers
		for pos < len(owner.outEdges) && owner.outEdges[pos].index < ed.index {
			pos++
		}
		owner.outEdges = insertEdge(owner.outEdges, pos, ed)
		return
	}

	owner.outEdges = insertEdge(owner.outEdges, 0, ed)
	owner.nFollowers++
}

func insertEdge(s []edge, pos int, ed edge) []edge {
	s = append(s, edge{})
	copy(s[pos+1:], s[pos:])
	s[pos] = ed
	return s
}

// reclassifyOperandEdges updates every operand's outEdges to reflect r's
// new follower/leader role, called right after a promotion or demotion.
func (e *Engine) reclassifyOperandEdges(r *Record, toLeader bool) {
	for _, in := range r.Node.Inputs {
		if in == nil {
			continue
		}
		e.reclassifyEdge(e.records[in], r, toLeader)
	}
}
