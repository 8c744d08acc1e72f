package kit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestChain_Order(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name+"_before")
				resp, err := next(ctx, req)
				order = append(order, name+"_after")
				return resp, err
			}
		}
	}

	base := func(context.Context, any) (any, error) {
		order = append(order, "endpoint")
		return "ok", nil
	}

	resp, err := Chain(mw("a"), mw("b"), mw("c"))(base)(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp != "ok" {
		t.Fatalf("response: got %v", resp)
	}

	want := []string{"a_before", "b_before", "c_before", "endpoint", "c_after", "b_after", "a_after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestChain_ErrorPropagation(t *testing.T) {
	errFail := errors.New("fail")
	base := func(context.Context, any) (any, error) { return nil, errFail }
	noop := func(next Endpoint) Endpoint { return next }

	_, err := Chain(noop)(base)(context.Background(), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v, want %v", err, errFail)
	}
}

func TestRecover_ConvertsPanic(t *testing.T) {
	base := func(context.Context, any) (any, error) { panic("boom") }

	_, err := Recover()(base)(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want panic message", err)
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := func(context.Context, any) (any, error) { return 42, nil }

	resp, err := Logging(logger, "test_op")(base)(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp != 42 {
		t.Fatalf("response: got %v", resp)
	}
}

// --- MCP transport ---

var testImpl = &mcp.Implementation{Name: "kit-test", Version: "0.0.1"}

func mcpToolSession(t *testing.T, register func(*mcp.Server)) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)
	register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestRegisterMCPTool_RoundTrip(t *testing.T) {
	type req struct {
		Name string `json:"name"`
	}

	session := mcpToolSession(t, func(srv *mcp.Server) {
		tool := &mcp.Tool{
			Name:        "echo_name",
			Description: "Echo the given name",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
				},
				"required": []string{"name"},
			},
		}
		endpoint := func(_ context.Context, r any) (any, error) {
			p := r.(*req)
			if p.Name == "" {
				return nil, errors.New("name required")
			}
			return map[string]string{"hello": p.Name}, nil
		}
		decode := func(r *mcp.CallToolRequest) (*MCPDecodeResult, error) {
			var p req
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
			return &MCPDecodeResult{Request: &p}, nil
		}
		RegisterMCPTool(srv, tool, endpoint, decode)
	})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo_name",
		Arguments: map[string]any{"name": "ada"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	var resp map[string]string
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["hello"] != "ada" {
		t.Fatalf("response = %v", resp)
	}

	// Endpoint errors surface as tool errors, not transport errors.
	result, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo_name",
		Arguments: map[string]any{"name": ""},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for the empty name")
	}
}
