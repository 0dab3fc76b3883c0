// Package introspect exposes combo's post-run state (the rewritten graph
// and its Report) to editor tooling over JSON-RPC, the same protocol the
// teacher's internal/lsp package speaks for Kanso source files. combo.Run
// releases its Engine's per-node Records before returning (combo.go's
// `defer e.arena.release()`) — by the time any caller could inspect it the
// apply phase has already materialized every finding into the graph, so
// this package does not reach into engine internals. It re-parses and
// re-runs combo on demand instead, the same round trip cmd/combo-cli
// drives from a shell, just kept warm across edits and answered over
// stdio instead of re-invoked as a new process each time.
//
// Grounded on the teacher's internal/lsp/handler.go: a mutex-guarded
// per-URI cache populated from TextDocumentDidOpen/DidChange, diagnostics
// published the same way (ConvertParseErrors's shape, sendDiagnosticNotification's
// ctx.Notify call), Hover and WorkspaceExecuteCommand standing in for
// Kanso's TextDocumentCompletion/SemanticTokensFull since this server has
// no source language of its own to offer completions or syntax
// highlighting for — only a processed graph to report on.
package introspect

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"combo/internal/combo"
	"combo/internal/config"
	"combo/internal/dump"
	"combo/internal/graph/parser"
)

var log = commonlog.GetLogger("introspect")

// CommandState is the workspace/executeCommand name a client calls to pull
// the full structured state for an open document: the rewritten graph's
// dump text and the run's Report. It is the only command this server
// defines; there is no mutating counterpart.
const CommandState = "combo.state"

// result is what one parse-and-run round trip over a document produces.
type result struct {
	graphText string
	report    combo.Report
	err       error
}

// Handler implements the glsp protocol handler methods this server
// supports. Every method here is read-only with respect to the documents
// it is shown: it parses and runs combo against a private copy of the
// graph, never touching anything outside this process.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	results map[string]result
	cfg     config.Config
}

// New creates a Handler that runs combo with cfg against every document it
// is shown.
func New(cfg config.Config) *Handler {
	return &Handler{
		content: make(map[string]string),
		results: make(map[string]result),
		cfg:     cfg,
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			HoverProvider: true,
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandState},
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// TextDocumentSyncKindFull always delivers the whole new text as the
	// last change entry's Text field, same as the teacher's TextDocumentSync.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	change, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("introspect: expected a whole-document change event")
	}
	return h.refresh(ctx, params.TextDocument.URI, change.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	delete(h.results, path)
	h.mu.Unlock()
	return nil
}

// TextDocumentHover answers with a summary of the last run's Report, a
// cheap at-a-glance view without requiring the client to know about
// CommandState.
func (h *Handler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	res, ok := h.results[path]
	h.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if res.err != nil {
		return &protocol.Hover{Contents: protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: res.err.Error()}}, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: dump.Report(res.report),
		},
	}, nil
}

// WorkspaceExecuteCommand handles CommandState: given {"uri": "..."} it
// returns {"graph": "<dump text>", "report": {...}} for the most recent
// run over that document. No command this server registers mutates
// anything a client can observe.
func (h *Handler) WorkspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != CommandState {
		return nil, fmt.Errorf("introspect: unknown command %q", params.Command)
	}
	uri, err := commandURI(params.Arguments)
	if err != nil {
		return nil, err
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	res, ok := h.results[path]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("introspect: no state for %q, open it first", uri)
	}
	if res.err != nil {
		return nil, res.err
	}
	return map[string]any{
		"graph":  res.graphText,
		"report": res.report,
	}, nil
}

func commandURI(args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("introspect: %s takes exactly one argument, a document URI", CommandState)
	}
	m, ok := args[0].(map[string]any)
	if !ok {
		return "", fmt.Errorf("introspect: %s argument must be an object with a \"uri\" field", CommandState)
	}
	uri, ok := m["uri"].(string)
	if !ok {
		return "", fmt.Errorf("introspect: %s argument missing string \"uri\" field", CommandState)
	}
	return uri, nil
}

// refresh parses text as a textual IR document, runs combo against it, and
// caches the dumped graph and Report for path, notifying the client of any
// parse or run failure as a diagnostic.
func (h *Handler) refresh(ctx *glsp.Context, rawURI protocol.DocumentUri, text string) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	g, perr := parser.ParseString(path, text)
	if perr != nil {
		h.store(path, result{err: perr})
		sendDiagnostics(ctx, rawURI, perr)
		return nil
	}

	report, rerr := combo.Run(g, h.cfg)
	if rerr != nil {
		h.store(path, result{err: rerr})
		sendDiagnostics(ctx, rawURI, rerr)
		return nil
	}

	h.store(path, result{graphText: dump.Graph(g, false), report: report})
	return nil
}

func (h *Handler) store(path string, res result) {
	h.mu.Lock()
	h.results[path] = res
	h.mu.Unlock()
}

// sendDiagnostics reports err as a single diagnostic, the same way the
// teacher's sendDiagnosticNotification does: only called when there is
// something to report, since neither the parser nor combo.Run currently
// hand back more than one failure per run.
func sendDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, err error) {
	diagnostics := []protocol.Diagnostic{{
		Range:    protocol.Range{},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("combo"),
		Message:  err.Error(),
	}}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("introspect: invalid URI %q: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool                                           { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity     { return &s }
func ptrString(s string) *string                                     { return &s }
