package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brandlens/internal/adapters/driving/mcp"
	"github.com/custodia-labs/brandlens/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

Tools:
  search_fingerprint  rank the library against a fingerprint or local image
  fingerprint_image   compute the fingerprint of a local image
  list_references     list the reference library

Examples:
  # Stdio mode (default)
  brandlens mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  brandlens mcp serve --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Search:      searchService,
		Library:     libraryService,
		Fingerprint: fingerprintService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	logger.SetTimestamps(true)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
