package collector

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/mapsieve/kit"
)

// RegisterMCP registers all mapsieve tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerClassifyPage(srv)
	s.registerLocateCards(srv)
	s.registerExtractDetail(srv)
	s.registerListMerchants(srv)
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

// wrap applies the shared endpoint middlewares.
func (s *Service) wrap(name string, e kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Recover(), kit.Logging(s.logger, name))(e)
}

func (s *Service) registerClassifyPage(srv *mcp.Server) {
	type req struct {
		XML string `json:"xml"`
	}

	tool := &mcp.Tool{
		Name:        "mapsieve_classify_page",
		Description: "Classify a uiautomator XML dump: search results list, merchant detail, map view or unknown",
		InputSchema: inputSchema(map[string]any{
			"xml": map[string]any{"type": "string", "description": "Raw uiautomator dump XML"},
		}, []string{"xml"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.ClassifyPage([]byte(p.XML))
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), decode)
}

func (s *Service) registerLocateCards(srv *mcp.Server) {
	type req struct {
		XML string `json:"xml"`
	}

	tool := &mcp.Tool{
		Name:        "mapsieve_locate_cards",
		Description: "Locate tappable listing cards in a search results dump, with tap points and confidence",
		InputSchema: inputSchema(map[string]any{
			"xml": map[string]any{"type": "string", "description": "Raw uiautomator dump XML"},
		}, []string{"xml"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.LocateCards([]byte(p.XML))
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), decode)
}

func (s *Service) registerExtractDetail(srv *mcp.Server) {
	type req struct {
		XML          string `json:"xml"`
		ExpectedName string `json:"expected_name"`
	}

	tool := &mcp.Tool{
		Name:        "mapsieve_extract_detail",
		Description: "Verify a merchant detail dump and extract name, phones, address, hours and rating",
		InputSchema: inputSchema(map[string]any{
			"xml":           map[string]any{"type": "string", "description": "Raw uiautomator dump XML"},
			"expected_name": map[string]any{"type": "string", "description": "Card name to check the screen against"},
		}, []string{"xml"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.ExtractDetail([]byte(p.XML), p.ExpectedName)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), decode)
}

func (s *Service) registerListMerchants(srv *mcp.Server) {
	type req struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}

	tool := &mcp.Tool{
		Name:        "mapsieve_list_merchants",
		Description: "List captured merchants, newest first",
		InputSchema: inputSchema(map[string]any{
			"limit":  map[string]any{"type": "integer", "description": "Max records, default 100"},
			"offset": map[string]any{"type": "integer", "description": "Records to skip"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.ListMerchants(ctx, p.Limit, p.Offset)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), decode)
}
