package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combo/internal/graph"
	"combo/internal/graph/parser"
)

func TestParseSubSelfSharesOperand(t *testing.T) {
	src := `
BLOCK entry (entry)
  %x = Unknown :i32
  %t = Sub :i32 (%x, %x)
  %e = End
`
	g, err := parser.ParseString("test", src)
	require.NoError(t, err)
	require.NotNil(t, g.Entry)
	assert.True(t, g.Entry.IsEntry)
	assert.NotNil(t, g.End)

	var sub *graph.Node
	for _, n := range g.Walk() {
		if n.Op == graph.OpSub {
			sub = n
		}
	}
	require.NotNil(t, sub)
	assert.Equal(t, sub.Input(0), sub.Input(1))
}

func TestParsePhiAcrossPreds(t *testing.T) {
	src := `
BLOCK entry (entry)
  %five = Const 5:i32
BLOCK join preds = entry, entry
  %a = Phi :i32 (%five, %five)
  %e = End
`
	g, err := parser.ParseString("test", src)
	require.NoError(t, err)

	var phi *graph.Node
	for _, n := range g.Walk() {
		if n.Op == graph.OpPhi {
			phi = n
		}
	}
	require.NotNil(t, phi)
	require.Equal(t, 2, phi.Arity())
	assert.Equal(t, uint64(5), phi.Input(0).ConstVal.Uint())
}

func TestParseRejectsUnknownOpcode(t *testing.T) {
	_, err := parser.ParseString("test", "BLOCK entry (entry)\n  %x = Frobnicate :i32\n")
	assert.Error(t, err)
}
