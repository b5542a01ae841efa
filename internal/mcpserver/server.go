// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasderef as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasderef"
)

const serverInstructions = `oasderef MCP server: dereferences OpenAPI 3.x documents and flattens allOf compositions.

Configuration: defaults are configurable via OASDEREF_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- OASDEREF_MODE (default: default) - "strict" keeps allOf compositions untouched
- OASDEREF_ALLOW_META_PATCHES (default: false) - annotate dereferenced objects with $$ref
- OASDEREF_RESOLVE_EXTERNAL (default: true) - follow references into other documents
- OASDEREF_MAX_REF_DEPTH (default: 100) - nested reference expansion limit
- OASDEREF_TIMEOUT (default: 30s) - per-call time budget
- OASDEREF_RATE_LIMIT (default: 10) - remote document fetches per second
- OASDEREF_RATE_BURST (default: 5) - remote fetches allowed in a burst
- OASDEREF_MAX_INLINE_SIZE (default: 10MiB) - inline content limit

Documents fetched by file or URL are cached for the lifetime of the server.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasderef", Version: oasderef.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "dereference",
		Description: "Dereference an OpenAPI 3.x document: replace every $ref with a copy of its target, flatten allOf compositions (unless mode=strict) and fill Example values from externalValue. Failures are reported per node with their JSON pointer and do not stop the run. Use allow_meta_patches=true to see where each dereferenced object came from ($$ref). Use format=yaml for YAML output.",
	}, handleDereference)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error())
}

func sanitize(msg string) string {
	return pathPattern.ReplaceAllString(msg, "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
