package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/opsgate/opsgate/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the opsgate MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the opsgate MCP server (stdio)",
		Long: "Start the opsgate MCP server using stdio transport. This lets AI coding assistants " +
			"run the validation gate and inspect the loaded rule set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetPath == "" {
				targetPath = "."
			}
			s := mcpadapter.NewOpsgateMCPServer(targetPath)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Target directory (defaults to current working directory)")

	return cmd
}
