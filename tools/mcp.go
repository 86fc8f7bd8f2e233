package tools

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/pkg/metricskey"
	"github.com/effective-security/worldbank-mcp/utils"
	mcp "github.com/metoro-io/mcp-golang"
)

// Invoke calls the tool with JSON input, reporting the call to the callback
// and to the tool metrics. The callback can be nil.
func Invoke(ctx context.Context, cb Callback, tool ITool, input string) (string, error) {
	name := tool.Name()
	if cb != nil {
		cb.OnToolStart(ctx, tool, input)
	}

	started := time.Now()
	out, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolError(ctx, tool, input, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if cb != nil {
		cb.OnToolEnd(ctx, tool, input, out)
	}
	return out, nil
}

// RunMCP invokes the tool and wraps its JSON output in a text tool response.
func RunMCP[I any](ctx context.Context, cb Callback, tool ITool, req *I) (*mcp.ToolResponse, error) {
	out, err := Invoke(ctx, cb, tool, utils.ToJSON(req))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(out)), nil
}

// RegisterMCP registers the tool with the MCP server,
// the argument schema is derived from I.
func RegisterMCP[I any](registrator McpServerRegistrator, cb Callback, tool ITool) error {
	handler := func(ctx context.Context, args I) (*mcp.ToolResponse, error) {
		return RunMCP(ctx, cb, tool, &args)
	}
	if err := registrator.RegisterTool(tool.Name(), tool.Description(), handler); err != nil {
		return errors.Wrapf(err, "failed to register tool: %s", tool.Name())
	}
	return nil
}
