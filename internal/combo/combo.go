package combo

import (
	"sync"

	"github.com/tliron/commonlog"

	"combo/internal/config"
	"combo/internal/diag"
	"combo/internal/graph"
	"combo/internal/lattice"
)

var log = commonlog.GetLogger("combo")

// runGuard enforces spec.md §5's "the pass holds exclusive read/write
// access to its IR graph; no concurrent mutation from elsewhere is
// permitted" for the lifetime of one Run call. A plain non-reentrant
// mutex is the teacher's own level of concurrency ceremony (nothing in
// this corpus reaches for a deadlock-detecting lock for a single
// exclusion flag) — see DESIGN.md for why github.com/sasha-s/go-deadlock
// isn't a fit here.
var runGuard sync.Mutex

// Engine holds all per-run state: the host graph, configuration, the
// arena owning every Record/Partition, and the two work queues spec.md
// §4.4/§4.5 describe.
type Engine struct {
	g   *graph.Graph
	cfg config.Config

	arena   *arena
	records map[*graph.Node]*Record

	// blockPhis indexes each block's Phi records, since a Phi's dependence
	// on its owning block is carried in Node.Block, not an operand edge, so
	// it wouldn't otherwise be found by walking def-use edges out of the
	// block (spec.md §4.4 step 4: "placing a Block also enqueues all its
	// attached Phis").
	blockPhis map[*graph.Node][]*Record

	// blockPreds indexes, for each control node named in some Block's Preds
	// list, the Block records that name it. Preds is a plain field set by
	// the parser (internal/graph/parser) and by callers building blocks directly,
	// not a def-use edge, so a Block naming a Cond/Switch Proj (or Jmp) in
	// Preds has no outEdges entry pointing back at it; without this index
	// onTypeChanged's walk over outEdges would never re-enqueue that Block
	// (or the Phis attached to it, whose computePhi also reads Preds
	// per-slot) when the named control node's reachability resolves.
	blockPreds map[*graph.Node][]*Record

	cpropQueue []*Partition
	worklist   []*Partition

	reporter *diag.Reporter
	report   Report
	debug    bool
}

// Run is the core's one entry point (spec.md §6: "combo(graph)"). It
// mutates g in place via the apply phase and returns a Report describing
// what it found.
func Run(g *graph.Graph, cfg config.Config) (Report, error) {
	if !runGuard.TryLock() {
		return Report{}, diag.PreconditionError("combo.Run called re-entrantly or concurrently")
	}
	defer runGuard.Unlock()

	if g == nil {
		return Report{}, diag.PreconditionError("nil graph")
	}
	if g.Entry == nil {
		return Report{}, diag.PreconditionError("graph has no entry block")
	}

	e := &Engine{
		g:          g,
		cfg:        cfg,
		arena:      newArena(),
		records:    make(map[*graph.Node]*Record),
		blockPhis:  make(map[*graph.Node][]*Record),
		blockPreds: make(map[*graph.Node][]*Record),
		reporter:   diag.NewReporter(),
		debug:      cfg.Verbose,
	}
	defer e.arena.release()

	e.initialize()
	e.drainQueues()
	e.applyPhase()

	e.report.merge(e.reporter)
	if cfg.Verbose {
		log.Debugf("combo: done, %d constants folded, %d splits, %d dead blocks removed",
			e.report.ConstantsFolded, e.report.Splits, e.report.DeadBlocksRemoved)
	}
	return e.report, nil
}

// initialize builds one Record per node, all in a single initial
// partition typed Top (spec.md §3's lifecycle rule), and seeds the cprop
// queue. The original seeds only the entry block and input-independent
// nodes, relying on cascading recomputation to reach everything else; this
// implementation seeds every node once instead, a deliberate
// simplification (documented in DESIGN.md) that is sound — recomputing an
// already-stable node is a no-op — at the cost of a few redundant initial
// evaluations.
func (e *Engine) initialize() {
	p := e.arena.allocPartition()

	for _, n := range e.g.Walk() {
		r := e.arena.allocRecord(n)
		e.records[n] = r
		p.addLeader(r)
	}

	for _, n := range e.g.Walk() {
		r := e.records[n]
		for _, use := range n.Uses() {
			r.outEdges = append(r.outEdges, edge{user: e.records[use.User], index: use.Index})
		}
		r.sortEdgesLeaderRegion()
		if n.Op == graph.OpPhi {
			e.blockPhis[n.Block] = append(e.blockPhis[n.Block], r)
		}
		if n.Op == graph.OpBlock {
			for _, pred := range n.Preds {
				e.blockPreds[pred] = append(e.blockPreds[pred], r)
			}
		}
	}

	for _, n := range e.g.Walk() {
		e.enqueueCprop(e.records[n])
	}
	e.queueCprop(p)
}

// enqueueCprop places r onto its partition's inner cprop list, Cond/Switch
// and their Projs going to the "evaluated last" list per spec.md §4.4 step
// 2. Record.onCprop guards against enqueueing r twice while it is already
// sitting on one of these lists unprocessed — a node with more than one
// operand pointing at the same changed record (e.g. Add(x, x)) would
// otherwise fan out to it once per operand.
func (e *Engine) enqueueCprop(r *Record) {
	if r.onCprop {
		return
	}
	r.onCprop = true
	p := r.partition
	if isCondSwitchOrProj(r.Node) {
		p.innerCpropCtrl = append(p.innerCpropCtrl, r)
	} else {
		p.innerCprop = append(p.innerCprop, r)
	}
	e.queueCprop(p)
}

func isCondSwitchOrProj(n *graph.Node) bool {
	if n.Op == graph.OpCond || n.Op == graph.OpSwitch {
		return true
	}
	if n.Op == graph.OpProj {
		switch n.ProjKind {
		case graph.ProjCondTrue, graph.ProjCondFalse, graph.ProjSwitchCase, graph.ProjSwitchDefault:
			return true
		}
	}
	return false
}

func (e *Engine) queueCprop(p *Partition) {
	if !p.onCprop {
		p.onCprop = true
		e.cpropQueue = append(e.cpropQueue, p)
	}
}

func (e *Engine) queueWorklist(p *Partition) {
	if !p.onWorklist {
		p.onWorklist = true
		e.worklist = append(e.worklist, p)
	}
}

// drainQueues runs the combined fixed point: cprop (propagation, §4.4)
// drains first, then one worklist entry (cause-splits, §4.5) is popped,
// which may re-queue partitions onto cprop; repeat until both are empty.
func (e *Engine) drainQueues() {
	for len(e.cpropQueue) > 0 || len(e.worklist) > 0 {
		if len(e.cpropQueue) > 0 {
			p := e.popCprop()
			e.propagatePartition(p)
			continue
		}
		p := e.popWorklist()
		e.causeSplits(p)
	}
}

func (e *Engine) popCprop() *Partition {
	p := e.cpropQueue[0]
	e.cpropQueue = e.cpropQueue[1:]
	p.onCprop = false
	return p
}

func (e *Engine) popWorklist() *Partition {
	// Prefer the smaller partition, per spec.md §4.5/§5's O(n log n)
	// refinement bound ("the worklist always prefers the smaller
	// partition on a split").
	best := 0
	for i := 1; i < len(e.worklist); i++ {
		if e.worklist[i].size() < e.worklist[best].size() {
			best = i
		}
	}
	p := e.worklist[best]
	e.worklist = append(e.worklist[:best], e.worklist[best+1:]...)
	p.onWorklist = false
	return p
}

func (e *Engine) assertMonotonic(r *Record, from, to lattice.Element) {
	if !lattice.Monotonic(from, to) {
		diag.MonotonicityViolation(e.reporter, e.debug, nodeLabel(r.Node), from.String(), to.String())
	}
}

func nodeLabel(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.Op.String()
}
