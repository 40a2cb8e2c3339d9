package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the document index to MCP clients",
	Long: `Serve the ask, list_documents and remove_document tools plus the
docqa://documents resource.

Without --addr the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants expect:

  {"mcpServers": {"docqa": {"command": "docqa", "args": ["mcp", "serve"]}}}

With --addr it serves the streamable HTTP transport instead:

  docqa mcp serve --addr :8090`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "listen address for streamable HTTP (default: stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	server, err := mcp.NewServer(&mcp.Ports{Retrieval: app.Retrieval}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	cmd.PrintErrf("MCP endpoint on %s\n", mcpAddr)
	return server.RunHTTP(cmd.Context(), mcpAddr)
}
