package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/hdlast/internal/mcp"
	"github.com/mvp-joe/hdlast/internal/storage"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for HDL export and hierarchy queries",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
inspect the design.

The MCP server:
- Exports single files on demand (hdl_export)
- Resolves the design hierarchy (hdl_hierarchy)
- Answers instance queries from the index built by 'hdlast index' (hdl_instances)
- Communicates via stdio (standard MCP transport)

Logs go to stderr.

Example:
  hdlast mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	p, err := openProject(rootFlag, os.Stderr, verboseFlag, quietFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := commandContext(cmd.Context(), p.logger)
	defer cancel()

	cfg := mcp.ServerConfig{
		Name:      p.cfg.MCP.Name,
		Version:   p.cfg.MCP.Version,
		Exporter:  p.newExporter(exportOverrides{}, nil),
		Discovery: p.discovery,
	}

	db, err := openIndex(p)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		cfg.Reader = storage.NewReader(db)
	} else {
		p.logger.Warn("no index found, hdl_instances is unavailable", "db", p.dbPath())
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	p.logger.Info("MCP server starting", "name", cfg.Name, "version", cfg.Version, "root", p.root)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// openIndex opens the project database if it exists. It returns nil, nil
// when there is none, so the server never creates an empty index.
func openIndex(p *project) (*sql.DB, error) {
	if _, err := os.Stat(p.dbPath()); os.IsNotExist(err) {
		return nil, nil
	}
	db, err := storage.Open(p.dbPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return db, nil
}
