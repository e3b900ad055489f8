package cmd

import (
	"github.com/huangsam/cadence/internal/dataload"
	"github.com/huangsam/cadence/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Cadence MCP server",
	Long:  `Launch an MCP server that allows AI agents to run periodicity detection via standard tools.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Tool calls name their own input file
		return sharedSetup(rootCtx, cmd, []string{dataload.StdinPath})
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, runManager)
	},
}
