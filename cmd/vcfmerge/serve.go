package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	vcfmergemcp "github.com/gorewood/vcfmerge/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run vcfmerge as a Model Context Protocol (MCP) server over stdio.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "vcfmerge": {
        "command": "vcfmerge",
        "args": ["serve"]
      }
    }
  }

Available tools: defaults, preview, merge`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := vcfmergemcp.NewServer(buildVersion())
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
