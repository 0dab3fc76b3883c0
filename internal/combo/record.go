// Package combo implements Click's combined conditional-constant-propagation
// and global-value-numbering pass (spec.md, the "core"): a lattice over IR
// values, per-opcode transfer and identity functions, and a
// partition-refinement machine that maintains the invariant that every pair
// of nodes in the same partition is congruent under the current
// information.
//
// The package is written against internal/graph's concrete Graph and Node
// types rather than any particular pass-manager, matching spec.md §1's
// framing of IR construction, tarval arithmetic, and dump hooks as external
// collaborators the core only consumes through narrow interfaces.
package combo

import (
	"combo/internal/graph"
	"combo/internal/lattice"
)

// raceFlag tags which side of a splitter race (4.7) has reached a follower
// during a two-sided walk.
type raceFlag int

const (
	raceNone raceFlag = iota
	raceA
	raceB
	raceBoth // reached by both sides: loses follower status
)

// edge is one def-use edge in a record's own sorted, segregated copy
// (spec.md §4.8): the engine never mutates the graph's edges during
// analysis, only this per-record view.
type edge struct {
	user  *Record
	index int
}

// Record is the per-IR-node analysis record spec.md §3 describes: current
// lattice element, partition membership, flags, and the def-use edge view
// used for follower/leader segregation.
type Record struct {
	Node *graph.Node
	Type lattice.Element

	partition *Partition

	isFollower bool
	onTouched  bool
	// onCprop guards enqueueCprop/popInnerCprop's dedup: true while r sits
	// on its partition's innerCprop/innerCpropCtrl list, unset once popped.
	onCprop bool
	race    raceFlag

	// nFollowers is the prefix count of outEdges whose user is currently a
	// follower (invariant 4): outEdges[:nFollowers] are follower edges,
	// outEdges[nFollowers:] are sorted ascending by input index.
	nFollowers int
	outEdges   []edge

	// nextEdge mirrors spec.md §3's collect_touched cursor of the same
	// name. collectTouched does not read or advance it; it rescans the
	// full outEdges list for every input index (see DESIGN.md).
	nextEdge int
}

func newRecord(n *graph.Node) *Record {
	return &Record{Node: n, Type: lattice.TopElem}
}

// Partition returns the partition this record currently belongs to.
func (r *Record) Partition() *Partition { return r.partition }

// IsFollower reports whether r is currently a follower of some leader in
// its partition (invariant 3: identity(r) names that leader).
func (r *Record) IsFollower() bool { return r.isFollower }

// sortEdgesLeaderRegion puts the leader region (outEdges[nFollowers:]) in
// ascending-by-input-index order (spec.md §4.8). initialize calls it once
// per record; later follower/leader transitions keep the order through
// reclassifyEdge's sorted insertion instead.
func (r *Record) sortEdgesLeaderRegion() {
	region := r.outEdges[r.nFollowers:]
	for i := 1; i < len(region); i++ {
		for j := i; j > 0 && region[j-1].index > region[j].index; j-- {
			region[j-1], region[j] = region[j], region[j-1]
		}
	}
}
