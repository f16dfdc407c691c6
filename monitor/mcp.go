package monitor

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/boardwatch/boardwatch/idgen"
	"github.com/boardwatch/boardwatch/kit"
)

// RegisterMCP registers the monitor tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerScanTool(srv)
	s.registerRunTool(srv)
	s.registerStatusTool(srv)
}

// reqID tags each tool call for log correlation.
var reqID = idgen.Prefixed("req_", idgen.NanoID(8))

// enrichMCP stamps the context with the transport and a fresh request ID.
func enrichMCP(ctx context.Context) context.Context {
	ctx = kit.WithTransport(ctx, "mcp")
	return kit.WithRequestID(ctx, reqID())
}

// toolLogging logs every invocation of a tool with its request ID.
func (s *Service) toolLogging(tool string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			log := s.logger.With(
				"tool", tool,
				"transport", kit.GetTransport(ctx),
				"request_id", kit.GetRequestID(ctx),
			)
			resp, err := next(ctx, req)
			if err != nil {
				log.Warn("mcp: tool failed", "error", err)
				return nil, err
			}
			log.Debug("mcp: tool ok")
			return resp, nil
		}
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- scan ---

type scanReq struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

func (s *Service) registerScanTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "boardwatch_scan",
		Description: "Scan raw document text for preschool-program keyword mentions and infer the meeting date.",
		InputSchema: inputSchema(map[string]any{
			"title": map[string]any{"type": "string", "description": "Document title"},
			"url":   map[string]any{"type": "string", "description": "Document URL"},
			"text":  map[string]any{"type": "string", "description": "Extracted document text"},
		}, []string{"text"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*scanReq)
		return s.ScanText(r.Title, r.URL, r.Text), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r scanReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrichMCP}, nil
	}

	endpoint = kit.Chain(s.toolLogging(tool.Name))(endpoint)
	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- run ---

type runReq struct{}

func (s *Service) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "boardwatch_run",
		Description: "Execute one full monitoring run: discover, scan, dedupe, and write report artifacts.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Run(ctx)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &runReq{}, EnrichCtx: enrichMCP}, nil
	}

	endpoint = kit.Chain(s.toolLogging(tool.Name))(endpoint)
	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- status ---

type statusReq struct{}

func (s *Service) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "boardwatch_status",
		Description: "Report dedupe state and recent runs.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		runs, err := s.Runs(ctx, 10)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"state": s.StateSummary(),
			"runs":  runs,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &statusReq{}, EnrichCtx: enrichMCP}, nil
	}

	endpoint = kit.Chain(s.toolLogging(tool.Name))(endpoint)
	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
