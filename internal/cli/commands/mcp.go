package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbi/internal/mcp"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Start the Model Context Protocol server on standard input/output.

The server exposes measure, column, table, relationship and project
tools over the MCP protocol until the client disconnects or the
process receives an interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger: cmdCtx.Logger,
				Loader: cmdCtx.Loader,
			})

			cmdCtx.Logger.Info("starting MCP server", "tools", len(srv.ListToolNames()))
			return srv.Run(ctx)
		},
	}
}
