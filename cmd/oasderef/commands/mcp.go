package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasderef/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC and exposes a single
"dereference" tool. Defaults are read from OASDEREF_* environment variables.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "oasderef": {
        "command": "/path/to/oasderef",
        "args": ["mcp"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
