package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"combo/internal/graph"
	"combo/internal/graph/token"
	"combo/internal/tarval"
)

// ParseFile reads and parses a textual IR file into a fresh graph.Graph.
func ParseFile(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading IR file %q", path)
	}
	return ParseString(path, string(src))
}

// ParseString parses source text (named by filename, used only in error
// messages) into a graph.Graph. The oracle is always nil (tarval.Bad for
// every node): a hand-authored IR graph has no opcode-specific
// computed_value rule to attach, same as the teacher's ParseFile never
// wires semantic evaluation into its own AST.
func ParseString(filename, src string) (*graph.Graph, error) {
	p, err := participle.Build[Program](
		participle.Lexer(token.Lexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, errors.Wrap(err, "building IR grammar")
	}

	prog, err := p.ParseString(filename, src)
	if err != nil {
		reportParseError(src, err)
		return nil, err
	}
	return buildGraph(prog)
}

// reportParseError prints a caret-style diagnostic, the same shape as the
// teacher's grammar.reportParseError, adapted from participle's own
// Error.Position()/Message() instead of hand-tracked line/column state.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(0, pos.Column-1)) + "^"
	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// buildGraph converts the parsed AST into a *graph.Graph in two passes:
// first every Block and Node is allocated (so names are resolvable
// regardless of declaration order, needed for Phi nodes in loop headers
// whose operands reach back through a not-yet-declared predecessor block),
// then every node's operand/attribute references are wired up by name.
func buildGraph(prog *Program) (*graph.Graph, error) {
	g := graph.New(nil)

	blocksByName := make(map[string]*graph.Node)
	nodesByName := make(map[string]*graph.Node)
	type pending struct {
		decl  *Node
		node  *graph.Node
		block *graph.Node
	}
	var toWire []pending

	for _, b := range prog.Blocks {
		if _, dup := blocksByName[b.Name]; dup {
			return nil, errors.Errorf("duplicate block %q", b.Name)
		}
		block := g.NewNode(graph.OpBlock, graph.ControlMode)
		block.Name = b.Name
		block.IsEntry = b.Entry
		blocksByName[b.Name] = block
		if b.Entry {
			g.Entry = block
		}

		for _, nd := range b.Nodes {
			op, ok := graph.ParseOpcode(nd.Op)
			if !ok {
				return nil, errors.Errorf("block %q: unknown opcode %q", b.Name, nd.Op)
			}
			mode, err := modeFor(op, nd)
			if err != nil {
				return nil, errors.Wrapf(err, "block %q, node %q", b.Name, nd.Result)
			}
			n := g.NewNode(op, mode)
			n.Block = block
			if nd.Result != "" {
				n.Name = nd.Result
				if _, dup := nodesByName[nd.Result]; dup {
					return nil, errors.Errorf("duplicate result name %q", nd.Result)
				}
				nodesByName[nd.Result] = n
			}
			if op == graph.OpEnd {
				g.End = n
			}
			toWire = append(toWire, pending{decl: nd, node: n, block: block})
		}
	}

	for name, b := range blocksByName {
		preds, err := resolvePreds(findBlockDecl(prog, name), blocksByName)
		if err != nil {
			return nil, err
		}
		b.Preds = preds
	}

	for _, pw := range toWire {
		inputs := make([]*graph.Node, len(pw.decl.Args))
		for i, a := range pw.decl.Args {
			in, ok := nodesByName[a]
			if !ok {
				in, ok = blocksByName[a]
			}
			if !ok {
				return nil, errors.Errorf("node %q: unknown operand %q", pw.decl.Result, a)
			}
			inputs[i] = in
		}
		g.SetInputs(pw.node, inputs)

		if err := applyAttrs(pw.node, pw.decl); err != nil {
			return nil, errors.Wrapf(err, "node %q", pw.decl.Result)
		}
	}

	return g, nil
}

func findBlockDecl(prog *Program, name string) *Block {
	for _, b := range prog.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func resolvePreds(decl *Block, blocksByName map[string]*graph.Node) ([]*graph.Node, error) {
	if decl == nil {
		return nil, nil
	}
	preds := make([]*graph.Node, len(decl.Preds))
	for i, name := range decl.Preds {
		b, ok := blocksByName[name]
		if !ok {
			return nil, errors.Errorf("block %q: unknown predecessor %q", decl.Name, name)
		}
		preds[i] = b
	}
	return preds, nil
}

func applyAttrs(n *graph.Node, nd *Node) error {
	switch n.Op {
	case graph.OpConst:
		if nd.ConstVal == nil {
			return errors.New("Const needs a \"value:mode\" literal")
		}
		if n.Mode.Kind == graph.ModeBool {
			n.ConstVal = tarval.Bool(*nd.ConstVal != 0)
		} else {
			n.ConstVal = tarval.Int(n.Mode.Width, n.Mode.Signed, uint64(*nd.ConstVal))
		}
	case graph.OpSymConst:
		if nd.Entity == nil {
			return errors.New("SymConst needs a \"&name\" entity reference")
		}
		n.Entity = tarval.NewEntity(*nd.Entity)
	}

	if nd.Relation != nil {
		rel, err := parseRelation(*nd.Relation)
		if err != nil {
			return err
		}
		n.Relation = rel
	}
	if nd.ProjKind != nil {
		kind, err := parseProjKind(*nd.ProjKind)
		if err != nil {
			return err
		}
		n.ProjKind = kind
	}
	if nd.CaseVal != nil {
		n.CaseValue = int64(*nd.CaseVal)
	}
	return nil
}

// modeFor resolves a node's Mode: Const/SymConst carry it as an explicit
// attribute, everything else defaults to a mode inferred from the opcode
// (control-flow opcodes get ControlMode, Cond/Switch get TupleMode, Cmp
// gets Bool); binary/unary data opcodes need their width given explicitly
// via the same ":mode" suffix Const uses, since there's no operand to
// infer it from at parse time.
func modeFor(op graph.Opcode, nd *Node) (graph.Mode, error) {
	switch op {
	case graph.OpBlock, graph.OpJmp, graph.OpEnd:
		return graph.ControlMode, nil
	case graph.OpCond, graph.OpSwitch:
		return graph.TupleMode, nil
	case graph.OpCmp:
		return graph.Bool, nil
	case graph.OpProj:
		if nd.ProjKind != nil && (*nd.ProjKind == "true" || *nd.ProjKind == "false" ||
			*nd.ProjKind == "case" || *nd.ProjKind == "default") {
			return graph.ControlMode, nil
		}
		if nd.Mode != nil {
			return parseMode(*nd.Mode)
		}
		return graph.MemoryMode, nil
	}
	if op == graph.OpConst && nd.ConstMode != nil {
		return parseMode(*nd.ConstMode)
	}
	if nd.Mode != nil {
		return parseMode(*nd.Mode)
	}
	return graph.Mode{}, errors.Errorf("opcode %q needs an explicit \":mode\" suffix", nd.Op)
}

func parseMode(s string) (graph.Mode, error) {
	switch s {
	case "bool":
		return graph.Bool, nil
	case "memory":
		return graph.MemoryMode, nil
	case "control":
		return graph.ControlMode, nil
	case "tuple":
		return graph.TupleMode, nil
	}
	if len(s) > 1 && (s[0] == 'i' || s[0] == 'u') {
		width, err := strconv.Atoi(s[1:])
		if err != nil {
			return graph.Mode{}, errors.Errorf("bad integer mode %q", s)
		}
		return graph.Int(width, s[0] == 'i'), nil
	}
	if len(s) > 1 && s[0] == 'f' {
		width, err := strconv.Atoi(s[1:])
		if err != nil {
			return graph.Mode{}, errors.Errorf("bad float mode %q", s)
		}
		return graph.Float(width), nil
	}
	return graph.Mode{}, errors.Errorf("unknown mode %q", s)
}

func parseRelation(s string) (tarval.Relation, error) {
	switch s {
	case "eq":
		return tarval.Equal, nil
	case "ne":
		return tarval.NotEqual, nil
	case "lt":
		return tarval.Less, nil
	case "le":
		return tarval.LessEqual, nil
	case "gt":
		return tarval.Greater, nil
	case "ge":
		return tarval.GreaterEqual, nil
	}
	return 0, errors.Errorf("unknown relation %q", s)
}

func parseProjKind(s string) (graph.ProjKind, error) {
	switch s {
	case "true":
		return graph.ProjCondTrue, nil
	case "false":
		return graph.ProjCondFalse, nil
	case "case":
		return graph.ProjSwitchCase, nil
	case "default":
		return graph.ProjSwitchDefault, nil
	case "general":
		return graph.ProjGeneral, nil
	case "memory":
		return graph.ProjMemory, nil
	}
	return 0, errors.Errorf("unknown proj kind %q", s)
}
