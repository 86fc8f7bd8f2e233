package tools

import (
	"context"

	"github.com/effective-security/worldbank-mcp/utils"
	mcp "github.com/metoro-io/mcp-golang"
)

type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a tool exposed to the tool-invocation host.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, shown to the caller.
	Description() string
	// Parameters returns the JSON schema of the tool input.
	Parameters() any

	// Call executes the tool with the given JSON input and returns the JSON result.
	Call(context.Context, string) (string, error)
}

type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
	OnToolNotFound(context.Context, string)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator, cb Callback) error
}

type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns JSON description of the tools, wrapped in backticks.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return utils.BackticksJSON(utils.ToJSONIndent(d))
}
