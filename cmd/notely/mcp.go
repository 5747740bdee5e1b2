// ABOUTME: MCP command to start the MCP server for one account.
// ABOUTME: Runs on stdio for integration with AI agents.

package main

import (
	"github.com/harper/notely/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpEmail string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long:  `Start the Model Context Protocol server over stdio. Every tool acts on the notes of the account given by --email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		owner, err := a.owner(cmd.Context(), mcpEmail)
		if err != nil {
			return err
		}
		return mcp.NewServer(a.notes, owner).Serve(cmd.Context())
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpEmail, "email", "", "account whose notes the server exposes")
	rootCmd.AddCommand(mcpCmd)
}
