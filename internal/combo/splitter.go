package combo

// splitOut removes set (a subset of p's current members) into a fresh
// partition, picking the no-follower fast path or the race splitter per
// spec.md §4.7, and returns the new partition.
func (e *Engine) splitOut(p *Partition, set []*Record) *Partition {
	if len(p.Followers) == 0 {
		return e.splitNoFollowers(p, set)
	}
	return e.splitRace(p, set)
}

// splitNoFollowers implements spec.md §4.7's fast path: p has no
// followers, so the set can simply be unlinked and moved wholesale.
func (e *Engine) splitNoFollowers(p *Partition, set []*Record) *Partition {
	np := e.arena.allocPartition()
	np.typeIsTopOrConst = false

	for _, r := range set {
		p.removeLeader(r)
		np.addLeader(r)
	}
	p.recomputeTypeIsTopOrConst()

	e.queueSmaller(p, np)
	e.queueCprop(p)
	e.queueCprop(np)
	e.splitBy(np)
	return np
}

// splitRace implements spec.md §4.7's two-sided race splitter: two
// mutually exclusive visits (one seeded with set, one with the rest)
// expand across follower def-use edges (a leader's follower-prefix
// outEdges). A follower reached from only one side stays attached to
// that side; one reached from both loses follower status and is
// promoted once the race ends (deferred, per the Design Notes' warning
// against mutating the edge iterator mid-walk).
func (e *Engine) splitRace(p *Partition, set []*Record) *Partition {
	inSet := make(map[*Record]bool, len(set))
	for _, r := range set {
		inSet[r] = true
	}

	var rest []*Record
	for _, l := range p.Leaders {
		if !inSet[l] {
			rest = append(rest, l)
		}
	}

	queueA := append([]*Record(nil), set...)
	queueB := append([]*Record(nil), rest...)
	walkedA := append([]*Record(nil), set...)
	walkedB := append([]*Record(nil), rest...)
	var bothPromote []*Record

	for _, r := range set {
		r.race = raceA
	}
	for _, r := range rest {
		r.race = raceB
	}

	visit := func(side raceFlag, l *Record, queue *[]*Record, walked *[]*Record) {
		for _, ed := range l.outEdges[:l.nFollowers] {
			f := ed.user
			switch f.race {
			case raceNone:
				f.race = side
				*walked = append(*walked, f)
			case raceA, raceB:
				if f.race != side {
					f.race = raceBoth
					bothPromote = append(bothPromote, f)
				}
			}
		}
	}

	for len(queueA) > 0 && len(queueB) > 0 {
		if len(queueA) <= len(queueB) {
			l := queueA[0]
			queueA = queueA[1:]
			visit(raceA, l, &queueA, &walkedA)
		} else {
			l := queueB[0]
			queueB = queueB[1:]
			visit(raceB, l, &queueB, &walkedB)
		}
	}

	// The side whose frontier exhausted first "finishes" first and wins
	// (spec.md §4.7); a simultaneous finish defaults to the seeded set.
	winnerIsA := len(queueA) == 0
	var winningLeaders, winningFollowers []*Record
	if winnerIsA {
		winningLeaders = set
		for _, r := range walkedA {
			if !r.isFollower {
				continue
			}
			if r.race == raceA {
				winningFollowers = append(winningFollowers, r)
			}
		}
	} else {
		winningLeaders = rest
		for _, r := range walkedB {
			if !r.isFollower {
				continue
			}
			if r.race == raceB {
				winningFollowers = append(winningFollowers, r)
			}
		}
	}

	for _, r := range append(append([]*Record(nil), set...), rest...) {
		if r.race != raceBoth {
			r.race = raceNone
		}
	}

	np := e.arena.allocPartition()
	np.typeIsTopOrConst = false
	for _, l := range winningLeaders {
		p.removeLeader(l)
		np.addLeader(l)
	}
	for _, f := range winningFollowers {
		p.removeFollower(f)
		np.addFollower(f)
		f.race = raceNone
	}

	// Followers reached by both sides lose their follower status: they are
	// no longer congruent to a single model now that their leader has
	// split. Promote them in the partition they still physically sit in.
	for _, f := range bothPromote {
		f.race = raceNone
		owner := f.partition
		if !f.isFollower {
			continue
		}
		owner.promoteToLeader(f)
		e.reclassifyOperandEdges(f, true)
		e.queueCprop(owner)
	}

	p.recomputeTypeIsTopOrConst()
	e.queueSmaller(p, np)
	e.queueCprop(p)
	e.queueCprop(np)
	e.splitBy(np)
	return np
}

func (e *Engine) queueSmaller(p, np *Partition) {
	if np.size() <= p.size() {
		e.queueWorklist(np)
	} else {
		e.queueWorklist(p)
	}
}
