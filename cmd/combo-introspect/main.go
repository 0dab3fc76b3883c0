// Command combo-introspect runs a read-only JSON-RPC server that parses
// textual IR documents, runs combo against them, and answers editor
// tooling's requests for the resulting graph and Report. By default it
// speaks LSP over stdio, the same transport the teacher's kanso-lsp uses;
// --listen switches to a bare JSON-RPC 2.0 method over a websocket, for
// clients that don't want to speak full LSP just to ask "what did combo
// do with this graph."
//
// Grounded on the teacher's cmd/kanso-lsp/main.go: the same
// commonlog.Configure + protocol.Handler + server.NewServer(...).RunStdio
// shape, with internal/introspect.Handler standing in for
// lsp.NewKansoHandler. The --listen mode has no teacher analogue; it
// exists to give github.com/sourcegraph/jsonrpc2 and
// github.com/gorilla/websocket (both already in the teacher's dependency
// graph as glsp transitives) a direct call site, per DESIGN.md.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"combo/internal/config"
	"combo/internal/introspect"
)

const serverName = "combo-introspect"

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to a combo.yaml config file (defaults to config.Default())")
	debug := flag.Bool("debug", false, "enable glsp/commonlog debug logging")
	listen := flag.String("listen", "", `if set, serve raw JSON-RPC 2.0 over websocket on this address instead of LSP over stdio (e.g. "localhost:7070")`)
	flag.Parse()

	if *debug {
		commonlog.Configure(1, nil)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("combo-introspect: %v", err)
		}
		cfg = loaded
	}

	if *listen != "" {
		if err := serveWebsocket(*listen, cfg); err != nil {
			log.Println("combo-introspect:", err)
			os.Exit(1)
		}
		return
	}

	h := introspect.New(cfg)
	handler := protocol.Handler{
		Initialize:              h.Initialize,
		Initialized:             h.Initialized,
		Shutdown:                h.Shutdown,
		TextDocumentDidOpen:     h.TextDocumentDidOpen,
		TextDocumentDidChange:   h.TextDocumentDidChange,
		TextDocumentDidClose:    h.TextDocumentDidClose,
		TextDocumentHover:       h.TextDocumentHover,
		WorkspaceExecuteCommand: h.WorkspaceExecuteCommand,
	}

	s := server.NewServer(&handler, serverName, *debug)

	log.Println("combo-introspect: listening on stdio")
	if err := s.RunStdio(); err != nil {
		log.Println("combo-introspect:", err)
		os.Exit(1)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWebsocket accepts websocket connections on addr and binds each one
// to a fresh jsonrpc2.Conn over introspect.RawHandler, via
// sourcegraph/jsonrpc2's own websocket.NewObjectStream adapter.
func serveWebsocket(addr string, cfg config.Config) error {
	h := introspect.NewRawHandler(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("combo-introspect: websocket upgrade:", err)
			return
		}
		stream := wsjsonrpc2.NewObjectStream(conn)
		rpc := jsonrpc2.NewConn(r.Context(), stream, h)
		<-rpc.DisconnectNotify()
	})

	log.Printf("combo-introspect: listening on ws://%s (method %q)\n", addr, introspect.RawMethodState)
	return http.ListenAndServe(addr, mux)
}
