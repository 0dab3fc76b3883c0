// Package token defines the lexical rules for combo's textual IR input
// format (BLOCK .../%name = Op(...) lines), the input internal/graph/parser
// reads back into a *graph.Graph. It is grounded directly on the teacher's
// grammar/lexer.go: same participle.MustStateful single-state rule table
// shape, adapted to this format's smaller token set (no string/doc-comment
// tokens, since the IR text has none).
package token

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes combo's textual IR syntax. Order matters, matching the
// teacher's own "keywords and identifiers before punctuation" layout: the
// BLOCK keyword first (so a node's @Ident opcode cannot consume the next
// block header), then identifiers and integers, then the handful of
// punctuation runes the grammar needs.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `;[^\n]*`, Action: nil},
		{Name: "Keyword", Pattern: `BLOCK\b`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Integer", Pattern: `-?[0-9]+`, Action: nil},
		{Name: "Arrow", Pattern: `->`, Action: nil},
		{Name: "Punct", Pattern: `[%=(),:.{}\[\]&]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
