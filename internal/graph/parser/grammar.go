// Package parser reads combo's textual IR format into a *graph.Graph. The
// format is its own input syntax; internal/dump.Graph prints a different,
// display-only rendering that this parser does not read back. It exists
// for tests, the REPL, and cmd/combo-cli's positional file argument, none
// of which want to build a graph by hand through Go calls.
//
// Grounded on the teacher's grammar package: a participle struct grammar
// (grammar.go) plus a ParseFile/ParseString driver with caret-style error
// reporting (parser.go), scaled down to this format's much smaller surface
// (no modules/structs/expressions — just blocks of flat node declarations).
package parser

// Program is the toplevel participle grammar: a flat sequence of blocks.
type Program struct {
	Blocks []*Block `@@*`
}

// Block is "BLOCK name [(entry)] [preds = p1, p2, ...] <node decls>".
type Block struct {
	Name  string   `"BLOCK" @Ident`
	Entry bool     `[ "(" @"entry" ")" ]`
	Preds []string `[ "preds" "=" [ @Ident { "," @Ident } ] ]`
	Nodes []*Node  `@@*`
}

// Node is one line of the textual form:
//
//	[ "%" result "=" ] opcode [ value ":" mode | ":" mode ] [ "&" entity ]
//	    [ "(" arg { "," arg } ")" ] [ "rel" relation ] [ "kind" projkind ]
//	    [ "case" n ]
//
// e.g. "%t = Sub :i32 (%x, %y)" or "%five = Const 5:i32". Only one of
// ConstVal/Entity is ever set (a Const or a SymConst); everything else is
// optional and mutually relevant only to specific opcodes, the same
// "unused fields are simply zero" shape internal/graph.Node itself uses.
// This format round-trips what a hand-written test or REPL session needs
// to express — the single combination of attributes a freshly authored
// node carries — not every attribute an engine-produced node could
// simultaneously hold after several rewrites; see DESIGN.md.
type Node struct {
	Result    string   `[ "%" @Ident "=" ]`
	Op        string   `@Ident`
	ConstVal  *int     `[ @Integer`
	ConstMode *string  `  ":" @Ident ]`
	// Mode is the generic ":mode" suffix every non-Const opcode that needs
	// an explicit width (Add, Sub, SymConst, ...) uses, since unlike Const
	// there's no leading integer literal to pair it with.
	Mode     *string  `[ ":" @Ident ]`
	Entity   *string  `[ "&" @Ident ]`
	Args     []string `[ "(" [ "%" @Ident { "," "%" @Ident } ] ")" ]`
	Relation *string  `[ "rel" @Ident ]`
	ProjKind *string  `[ "kind" @Ident ]`
	CaseVal  *int     `[ "case" @Integer ]`
}
