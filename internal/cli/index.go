package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/storage"
)

var indexWatchFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Store parsed design units and export documents in SQLite",
	Long: `Index parses HDL sources and stores their entities, architectures and
component instances in the project database (.hdlast/hdlast.db by default),
together with the export document of every file under a new run id.

Indexing the whole project also removes files that no longer exist. A file
that fails to parse is removed from the index.

The MCP server reads this database to answer instance queries.

Examples:
  # Index the current directory
  hdlast index

  # Index with progress bars disabled
  hdlast index --quiet

  # Watch for changes and reindex incrementally
  hdlast index --watch
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&indexWatchFlag, "watch", "w", false, "Watch for file changes and reindex incrementally")
}

func runIndex(cmd *cobra.Command, args []string) error {
	p, err := openProject(rootFlag, cmd.ErrOrStderr(), verboseFlag, quietFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := commandContext(cmd.Context(), p.logger)
	defer cancel()

	return executeIndex(ctx, p, args, indexWatchFlag, quietFlag, cmd.ErrOrStderr())
}

// indexSummary counts what one index pass changed.
type indexSummary struct {
	RunID   string
	Indexed int
	Removed int
	Failed  int
}

func executeIndex(ctx context.Context, p *project, paths []string, watch, quiet bool, stderr io.Writer) error {
	db, err := storage.Open(p.dbPath())
	if err != nil {
		return err
	}
	defer db.Close()

	var progress exporter.ProgressReporter = &exporter.NoOpProgressReporter{}
	if !quiet {
		progress = NewCLIProgressReporter(stderr, false)
	}
	exp := p.newExporter(exportOverrides{}, progress)
	writer := storage.NewWriter(db)

	results, err := collect(ctx, p, exp, paths)
	if err != nil {
		return err
	}
	summary, err := storeResults(p, writer, results)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		removed, err := pruneMissing(storage.NewReader(db), writer, results)
		if err != nil {
			return err
		}
		summary.Removed += removed
	}
	if !quiet {
		fmt.Fprintf(stderr, "✓ Indexed %s files into %s (run %s, %s removed)\n",
			formatNumber(summary.Indexed), p.dbPath(), summary.RunID, formatNumber(summary.Removed))
	}
	failErr := reportFailures(p.logger, results)

	if !watch {
		return failErr
	}

	fw, err := p.newWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	err = fw.Start(ctx, func(files []string) {
		summary, err := reindex(ctx, p, exp, writer, files)
		if err != nil {
			p.logger.Error("reindex failed", "err", err)
			return
		}
		p.logger.Info("reindexed",
			"run", summary.RunID,
			"indexed", summary.Indexed,
			"removed", summary.Removed,
			"failed", summary.Failed)
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	p.logger.Info("watching for changes", "root", p.root)
	<-ctx.Done()
	return fw.Stop()
}

// storeResults writes every result under a fresh run id. Failed files are
// dropped from the index.
func storeResults(p *project, writer *storage.Writer, results []exporter.Result) (indexSummary, error) {
	summary := indexSummary{RunID: storage.NewRunID()}
	for _, r := range results {
		if r.Err != nil {
			if err := writer.DeleteFile(r.RelPath); err != nil {
				return summary, err
			}
			summary.Failed++
			continue
		}
		hash, err := hashFile(r.Path)
		if err != nil {
			return summary, err
		}
		if err := writer.WriteContext(r.Context, hash); err != nil {
			return summary, err
		}
		if err := writer.WriteExport(summary.RunID, r.RelPath, r.Document); err != nil {
			return summary, err
		}
		summary.Indexed++
	}
	p.logger.Debug("results stored", "run", summary.RunID, "indexed", summary.Indexed, "failed", summary.Failed)
	return summary, nil
}

// pruneMissing deletes indexed files that are not among results.
func pruneMissing(reader *storage.Reader, writer *storage.Writer, results []exporter.Result) (int, error) {
	current := make(map[string]bool, len(results))
	for _, r := range results {
		current[r.RelPath] = true
	}
	files, err := reader.Files()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if current[f.FilePath] {
			continue
		}
		if err := writer.DeleteFile(f.FilePath); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// reindex handles one batch of changed paths: files that still exist are
// re-exported, deleted ones are removed.
func reindex(ctx context.Context, p *project, exp *exporter.Exporter, writer *storage.Writer, files []string) (indexSummary, error) {
	changed := existing(files)
	removed := 0
	present := make(map[string]bool, len(changed))
	for _, f := range changed {
		present[f] = true
	}
	for _, f := range files {
		if present[f] {
			continue
		}
		rel, ok := p.relPath(f)
		if !ok {
			continue
		}
		if err := writer.DeleteFile(rel); err != nil {
			return indexSummary{}, err
		}
		removed++
	}

	results, _, err := exp.ExportFiles(ctx, changed)
	if err != nil {
		return indexSummary{}, err
	}
	summary, err := storeResults(p, writer, results)
	summary.Removed = removed
	if err != nil {
		return summary, err
	}
	_ = reportFailures(p.logger, results)
	return summary, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
