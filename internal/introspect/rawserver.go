package introspect

import (
	"context"
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"

	"combo/internal/combo"
	"combo/internal/config"
	"combo/internal/dump"
	"combo/internal/graph/parser"
)

// RawMethodState is the JSON-RPC 2.0 method RawHandler answers, for
// clients that don't speak full LSP and just want one request/response
// round trip: source IR text in, rewritten graph and Report out. This is
// the method cmd/combo-introspect's --listen websocket transport exposes,
// alongside (not instead of) the glsp/stdio server Handler already
// implements.
const RawMethodState = "combo.state"

type stateRequest struct {
	Source string `json:"source"`
}

type stateResponse struct {
	Graph  string        `json:"graph"`
	Report combo.Report  `json:"report"`
}

// RawHandler implements jsonrpc2.Handler directly (rather than going
// through glsp's protocol.Handler) for callers that want a bare
// request/reply over a raw JSON-RPC 2.0 transport. It keeps no
// per-connection state: every call must carry the full IR source, since
// there is no open/change notification sequence to cache against.
type RawHandler struct {
	cfg config.Config
}

func NewRawHandler(cfg config.Config) *RawHandler {
	return &RawHandler{cfg: cfg}
}

func (h *RawHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != RawMethodState {
		if req.Notif {
			return
		}
		h.replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, "unknown method "+req.Method)
		return
	}

	var args stateRequest
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &args); err != nil {
			h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, err.Error())
			return
		}
	}

	g, err := parser.ParseString("<raw>", args.Source)
	if err != nil {
		h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, err.Error())
		return
	}
	report, err := combo.Run(g, h.cfg)
	if err != nil {
		h.replyError(ctx, conn, req, 0, err.Error())
		return
	}

	resp := stateResponse{Graph: dump.Graph(g, false), Report: report}
	if req.Notif {
		return
	}
	if err := conn.Reply(ctx, req.ID, resp); err != nil {
		log.Errorf("introspect: replying to %s: %v", RawMethodState, err)
	}
}

func (h *RawHandler) replyError(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, code int64, message string) {
	if req.Notif {
		log.Errorf("introspect: %s", message)
		return
	}
	if err := conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{Code: code, Message: message}); err != nil {
		log.Errorf("introspect: replying with error: %v", err)
	}
}
