// Package tools defines the Tool interface, the tool registry, and MCP registration of tools.
// Tools are invoked by an external caller with JSON input and return JSON output.
package tools
