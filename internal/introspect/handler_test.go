package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"combo/internal/config"
)

const sampleIR = `
BLOCK entry (entry)
  %x = Unknown :i32
  %t = Sub :i32 (%x, %x)
  %e = End
`

func TestDidOpenThenExecuteCommandReturnsState(t *testing.T) {
	h := New(config.Default())
	ctx := &glsp.Context{}

	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///sample.combo-ir", Text: sampleIR},
	})
	require.NoError(t, err)

	res, err := h.WorkspaceExecuteCommand(ctx, &protocol.ExecuteCommandParams{
		Command:   CommandState,
		Arguments: []any{map[string]any{"uri": "file:///sample.combo-ir"}},
	})
	require.NoError(t, err)

	state, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, state["graph"], "Sub")
}

func TestHoverReturnsReportSummary(t *testing.T) {
	h := New(config.Default())
	ctx := &glsp.Context{}

	require.NoError(t, h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///sample.combo-ir", Text: sampleIR},
	}))

	hover, err := h.TextDocumentHover(ctx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///sample.combo-ir"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, content.Value, "constants folded")
}

func TestExecuteCommandRejectsUnknownCommand(t *testing.T) {
	h := New(config.Default())
	_, err := h.WorkspaceExecuteCommand(&glsp.Context{}, &protocol.ExecuteCommandParams{Command: "not.a.real.command"})
	assert.Error(t, err)
}

func TestExecuteCommandRejectsMissingDocument(t *testing.T) {
	h := New(config.Default())
	_, err := h.WorkspaceExecuteCommand(&glsp.Context{}, &protocol.ExecuteCommandParams{
		Command:   CommandState,
		Arguments: []any{map[string]any{"uri": "file:///never-opened.combo-ir"}},
	})
	assert.Error(t, err)
}

func TestCommandURIValidation(t *testing.T) {
	_, err := commandURI(nil)
	assert.Error(t, err)

	_, err = commandURI([]any{"not-an-object"})
	assert.Error(t, err)

	uri, err := commandURI([]any{map[string]any{"uri": "file:///a.combo-ir"}})
	require.NoError(t, err)
	assert.Equal(t, "file:///a.combo-ir", uri)
}
