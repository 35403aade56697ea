package mcp

import "github.com/spf13/cobra"

// Cmd groups the MCP server commands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose StarFocus to AI assistants over MCP",
	Long: `Run the Model Context Protocol server so an assistant can rank tasks,
drive live focus sprints and read progress.

The server listens on MCP_ADDR. Set MCP_AUTH_TOKEN to require a bearer token.`,
}

func init() {
	Cmd.AddCommand(serveCmd)
}
