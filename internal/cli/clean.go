package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var cleanAllFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the SQLite index to force a full reindex",
	Long: `Clean removes the project database (.hdlast/hdlast.db by default) and its
SQLite journal files. The next 'hdlast index' starts from scratch.

With --all the configured export output directory is removed as well.

The configuration file (.hdlast/config.yml) is preserved.

Examples:
  # Remove the index
  hdlast clean

  # Remove the index and exported documents
  hdlast clean --all
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanAllFlag, "all", "a", false, "Also remove the export output directory")
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := openProject(rootFlag, cmd.ErrOrStderr(), verboseFlag, quietFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	return executeClean(p, cleanAllFlag, quietFlag, cmd.OutOrStdout())
}

func executeClean(p *project, all, quiet bool, out io.Writer) error {
	dbPath := p.dbPath()
	removed := false
	var sizeMB float64
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm", dbPath + "-journal"} {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		sizeMB += float64(info.Size()) / (1024 * 1024)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = true
	}

	if !quiet {
		if removed {
			fmt.Fprintf(out, "✓ Removed index %s (~%.1f MB)\n", dbPath, sizeMB)
			fmt.Fprintln(out, "Next 'hdlast index' will perform a full reindex")
		} else {
			fmt.Fprintln(out, "No index found for this project")
		}
	}

	if !all {
		return nil
	}
	outDir := p.outputDir(exportOverrides{})
	if outDir == "" {
		return nil
	}
	if rel, ok := p.relPath(outDir); !ok || rel == "." {
		return fmt.Errorf("refusing to remove %s: not below the project root", outDir)
	}
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to remove output directory: %w", err)
	}
	if !quiet {
		fmt.Fprintf(out, "✓ Removed export output %s\n", outDir)
	}
	return nil
}
