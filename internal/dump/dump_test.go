package dump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combo/internal/combo"
	"combo/internal/graph"
	"combo/internal/tarval"
)

func TestGraphRendersBlocksAndConst(t *testing.T) {
	g := graph.New(nil)
	entry := g.NewNode(graph.OpBlock, graph.ControlMode)
	entry.IsEntry = true
	entry.Name = "entry"

	c := g.NewNode(graph.OpConst, graph.Int(32, true))
	c.Block = entry
	c.ConstVal = tarval.Int(32, true, 7)

	add := g.NewNode(graph.OpAdd, graph.Int(32, true), c, c)
	add.Block = entry

	out := Graph(g, false)
	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "entry: (entry)"))
	assert.True(t, strings.Contains(out, "Const("))
	assert.True(t, strings.Contains(out, "Add("))
}

func TestGraphNoColorIsPlain(t *testing.T) {
	g := graph.New(nil)
	entry := g.NewNode(graph.OpBlock, graph.ControlMode)
	entry.IsEntry = true
	out := Graph(g, false)
	assert.False(t, strings.Contains(out, "\x1b["), "useColor=false must not emit ANSI escapes")
}

func TestReportSummarizesCounts(t *testing.T) {
	r := combo.Report{ConstantsFolded: 3, Splits: 2, DeadBlocksRemoved: 1}
	out := Report(r)
	assert.True(t, strings.Contains(out, "constants folded:"))
	assert.True(t, strings.Contains(out, "3"))
}
