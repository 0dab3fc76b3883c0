package combo

import (
	"fmt"

	"combo/internal/config"
	"combo/internal/diag"
	"combo/internal/graph"
)

// Stepper drives the same cprop/worklist fixed point drainQueues runs in
// one uninterrupted loop, one queue pop at a time, so a caller (repl's
// step command) can inspect partition/lattice state between pops instead
// of only seeing the graph before and after a full Run.
type Stepper struct {
	e *Engine
}

// NewStepper builds a Stepper the same way Run builds its Engine —
// initialize() runs immediately, seeding every record and the initial
// cprop queue — but leaves draining and the apply phase to the caller, via
// Step and Finish.
func NewStepper(g *graph.Graph, cfg config.Config) (*Stepper, error) {
	if g == nil {
		return nil, diag.PreconditionError("nil graph")
	}
	if g.Entry == nil {
		return nil, diag.PreconditionError("graph has no entry block")
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
	e.initialize()
	return &Stepper{e: e}, nil
}

// Step pops exactly one entry off whichever queue drainQueues would have
// chosen next (cprop before worklist, same as spec.md §4.4/§4.5's combined
// fixed point) and runs it. It returns false once both queues are empty —
// at that point the caller should call Finish to run the apply phase.
func (s *Stepper) Step() (more bool, description string) {
	e := s.e
	switch {
	case len(e.cpropQueue) > 0:
		p := e.popCprop()
		e.propagatePartition(p)
		return true, fmt.Sprintf("cprop: %s", describePartition(p))
	case len(e.worklist) > 0:
		p := e.popWorklist()
		e.causeSplits(p)
		return true, fmt.Sprintf("cause-splits: %s", describePartition(p))
	default:
		return false, "fixed point reached"
	}
}

// Finish runs the apply phase and releases the Stepper's arena, the same
// finishing steps Run performs once drainQueues returns. Calling Step
// again after Finish is not supported.
func (s *Stepper) Finish() Report {
	e := s.e
	defer e.arena.release()

	e.applyPhase()
	e.report.merge(e.reporter)
	return e.report
}

func describePartition(p *Partition) string {
	r := p.representative()
	if r == nil {
		return fmt.Sprintf("partition #%d (empty)", p.id)
	}
	return fmt.Sprintf("partition #%d led by %s (%s), %d member(s), type %s",
		p.id, nodeLabel(r.Node), r.Node.Op, p.size(), r.Type)
}
