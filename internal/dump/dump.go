// Package dump renders a combo graph and run report as readable text, the
// way the teacher's internal/ir.Printer renders its own SSA form and
// internal/errors.ErrorReporter colors its diagnostics. Neither the combo
// engine nor the graph package depends on this package; it only consumes
// them, matching spec.md §1's framing of dump hooks as an external
// collaborator the core never calls into itself.
package dump

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"combo/internal/combo"
	"combo/internal/graph"
)

// Printer accumulates a textual rendering of a graph, indentation-aware
// like the teacher's ir.Printer.
type Printer struct {
	indent int
	output strings.Builder
	color  bool
}

// New creates a printer. useColor should be false for log files and piped
// output; cmd/combo-cli passes false when its -no-color flag is set.
func New(useColor bool) *Printer {
	return &Printer{color: useColor}
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) paint(c *color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}

var (
	blockColor = color.New(color.FgBlue, color.Bold)
	ctrlColor  = color.New(color.FgYellow)
	constColor = color.New(color.FgCyan)
	deadColor  = color.New(color.Faint)
	opColor    = color.New(color.FgWhite)
)

// Graph renders every block and its nodes, in graph.Walk order,
// grouped by owning block. Nodes with no Block (pre-wiring scratch values,
// if any leak through) are listed under a synthetic "(unblocked)" header.
func Graph(g *graph.Graph, useColor bool) string {
	p := New(useColor)
	p.printGraph(g)
	return p.output.String()
}

func (p *Printer) printGraph(g *graph.Graph) {
	byBlock := make(map[*graph.Node][]*graph.Node)
	var blocks []*graph.Node
	var unblocked []*graph.Node

	for _, n := range g.Walk() {
		if n.Op == graph.OpBlock {
			blocks = append(blocks, n)
			continue
		}
		if n.Block == nil {
			unblocked = append(unblocked, n)
			continue
		}
		byBlock[n.Block] = append(byBlock[n.Block], n)
	}

	for _, b := range blocks {
		p.printBlock(b, byBlock[b])
	}

	if len(unblocked) > 0 {
		p.writeLine("(unblocked):")
		p.indent++
		for _, n := range unblocked {
			p.printNode(n)
		}
		p.indent--
	}
}

func (p *Printer) printBlock(b *graph.Node, nodes []*graph.Node) {
	label := b.Name
	if label == "" {
		label = fmt.Sprintf("block%d", b.ID)
	}
	header := fmt.Sprintf("%s:", label)
	if b.IsEntry {
		header += " (entry)"
	}
	p.writeLine("%s", p.paint(blockColor, header))

	preds := make([]string, len(b.Preds))
	for i, pr := range b.Preds {
		preds[i] = p.nodeRef(pr)
	}
	if len(preds) > 0 {
		p.indent++
		p.writeLine("preds: %s", strings.Join(preds, ", "))
		p.indent--
	}

	p.indent++
	for _, n := range nodes {
		p.printNode(n)
	}
	p.indent--
}

func (p *Printer) printNode(n *graph.Node) {
	ref := p.nodeRef(n)
	inputs := make([]string, n.Arity())
	for i := range n.Inputs {
		inputs[i] = p.nodeRef(n.Input(i))
	}
	args := strings.Join(inputs, ", ")

	line := fmt.Sprintf("%s = %s(%s)%s", ref, n.Op, args, p.attrString(n))
	switch n.Op {
	case graph.OpBad:
		line = p.paint(deadColor, line)
	case graph.OpConst, graph.OpSymConst:
		line = p.paint(constColor, line)
	case graph.OpCond, graph.OpSwitch, graph.OpJmp, graph.OpProj:
		line = p.paint(ctrlColor, line)
	default:
		line = p.paint(opColor, line)
	}
	p.writeLine("%s", line)
}

// attrString renders the opcode-specific payload spec.md §4.1's transfer
// rules read (relation, constant value, proj kind), mirroring how the
// teacher's printInstruction switches per instruction type.
func (p *Printer) attrString(n *graph.Node) string {
	switch n.Op {
	case graph.OpConst:
		return fmt.Sprintf(" ; %s:%s", n.ConstVal, n.Mode)
	case graph.OpSymConst:
		return fmt.Sprintf(" ; &%s", n.Entity.Name)
	case graph.OpCmp, graph.OpConfirm:
		return fmt.Sprintf(" ; rel=%d", n.Relation)
	case graph.OpProj:
		switch n.ProjKind {
		case graph.ProjCondTrue:
			return " ; true-edge"
		case graph.ProjCondFalse:
			return " ; false-edge"
		case graph.ProjSwitchCase:
			return fmt.Sprintf(" ; case=%d", n.CaseValue)
		case graph.ProjSwitchDefault:
			return " ; default"
		}
	}
	return ""
}

func (p *Printer) nodeRef(n *graph.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return "%" + n.Name
	}
	return fmt.Sprintf("%%%s%d", n.Op, n.ID)
}

// Report renders a run's Report as a short colorized summary, the way the
// teacher's OptimizationPipeline.Run prints its own pass-by-pass counts,
// generalized here into one block instead of one line per pass.
func Report(r combo.Report) string {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", bold("combo:"))
	fmt.Fprintf(&b, "  %s %d\n", dim("constants folded:"), r.ConstantsFolded)
	fmt.Fprintf(&b, "  %s %d\n", dim("partitions collapsed:"), r.PartitionsCollapsed)
	fmt.Fprintf(&b, "  %s %d\n", dim("dead blocks removed:"), r.DeadBlocksRemoved)
	fmt.Fprintf(&b, "  %s %d\n", dim("phis shrunk:"), r.PhisShrunk)
	fmt.Fprintf(&b, "  %s %d\n", dim("splits:"), r.Splits)

	if len(r.Findings) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n", dim("findings:"))
	var lines []string
	for _, f := range r.Findings {
		lines = append(lines, fmt.Sprintf("[%s] %s", f.Level, f.Message))
	}
	sort.Strings(lines)
	levelColor := color.New(color.FgYellow)
	for _, s := range lines {
		fmt.Fprintf(&b, "    %s\n", levelColor.Sprint(s))
	}
	return b.String()
}
