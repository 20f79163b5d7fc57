package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/watcher"
)

var (
	exportWatchFlag     bool
	exportOutputDirFlag string
	exportPrettyFlag    bool
	exportSortFlag      bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [paths...]",
	Short: "Export HDL design files as JSON documents",
	Long: `Export parses HDL sources and writes one JSON document per design file.

Without arguments every file matched by paths.include in .hdlast/config.yml is
exported. Arguments may be files or directories.

Documents are written to stdout, one per line (or pretty-printed with
--pretty), unless --output-dir is given, in which case each document is
written to <output-dir>/<relative path>.json.

A file that fails to parse produces no document. The remaining files are
still exported and the command exits non-zero.

Examples:
  # Export the whole project to stdout
  hdlast export

  # Export one directory as pretty-printed files
  hdlast export rtl --pretty --output-dir build/ast

  # Keep the output directory up to date while editing
  hdlast export --output-dir build/ast --watch
`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVarP(&exportWatchFlag, "watch", "w", false, "Re-export files as they change")
	exportCmd.Flags().StringVarP(&exportOutputDirFlag, "output-dir", "o", "", "Write documents under this directory instead of stdout")
	exportCmd.Flags().BoolVar(&exportPrettyFlag, "pretty", false, "Indent JSON output")
	exportCmd.Flags().BoolVar(&exportSortFlag, "sort-instances", false, "Order component instances by name")
}

// exportRun holds the settings of one export invocation.
type exportRun struct {
	paths     []string
	overrides exportOverrides
	watch     bool
	quiet     bool
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := openProject(rootFlag, cmd.ErrOrStderr(), verboseFlag, quietFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := commandContext(cmd.Context(), p.logger)
	defer cancel()

	return executeExport(ctx, p, exportRun{
		paths: args,
		overrides: exportOverrides{
			pretty:        exportPrettyFlag,
			sortInstances: exportSortFlag,
			outputDir:     exportOutputDirFlag,
		},
		watch: exportWatchFlag,
		quiet: quietFlag,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func executeExport(ctx context.Context, p *project, run exportRun, stdout, stderr io.Writer) error {
	var progress exporter.ProgressReporter = &exporter.NoOpProgressReporter{}
	if !run.quiet {
		progress = NewCLIProgressReporter(stderr, false)
	}
	exp := p.newExporter(run.overrides, progress)
	toFiles := p.outputDir(run.overrides) != ""

	results, err := collect(ctx, p, exp, run.paths)
	if err != nil {
		return err
	}
	if err := emit(p.logger, exp, results, toFiles, stdout); err != nil {
		return err
	}
	failErr := reportFailures(p.logger, results)

	if !run.watch {
		return failErr
	}

	fw, err := p.newWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	err = fw.Start(ctx, func(files []string) {
		changed := existing(files)
		if len(changed) == 0 {
			return
		}
		p.logger.Info("files changed", "count", len(changed))
		results, _, err := exp.ExportFiles(ctx, changed)
		if err != nil {
			p.logger.Error("re-export failed", "err", err)
			return
		}
		if err := emit(p.logger, exp, results, toFiles, stdout); err != nil {
			p.logger.Error("failed to write documents", "err", err)
		}
		_ = reportFailures(p.logger, results)
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	p.logger.Info("watching for changes", "root", p.root)
	<-ctx.Done()
	return fw.Stop()
}

// collect exports either the whole project or the given paths.
func collect(ctx context.Context, p *project, exp *exporter.Exporter, paths []string) ([]exporter.Result, error) {
	if len(paths) == 0 {
		results, _, err := exp.ExportDir(ctx, p.discovery)
		return results, err
	}
	files, err := p.sources(ctx, paths)
	if err != nil {
		return nil, err
	}
	results, _, err := exp.ExportFiles(ctx, files)
	return results, err
}

func emit(logger *log.Logger, exp *exporter.Exporter, results []exporter.Result, toFiles bool, stdout io.Writer) error {
	if !toFiles {
		return exp.Write(stdout, results)
	}
	written, err := exp.WriteFiles(results)
	if err != nil {
		return err
	}
	logger.Debug("documents written", "count", len(written))
	return nil
}

// reportFailures logs every failed file and returns an error if there was
// at least one.
func reportFailures(logger *log.Logger, results []exporter.Result) error {
	failed := exporter.Failed(results)
	for _, r := range failed {
		logger.Error("export failed", "file", r.RelPath, "err", r.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed to export", len(failed), len(results))
	}
	return nil
}

func (p *project) newWatcher() (watcher.FileWatcher, error) {
	return watcher.NewFileWatcher([]string{p.root}, p.cfg.Extensions(),
		watcher.WithFilter(func(path string) bool {
			rel, ok := p.relPath(path)
			return ok && p.discovery.Matches(rel)
		}),
		watcher.WithSkipDir(func(path string) bool {
			rel, ok := p.relPath(path)
			return ok && rel != "." && p.discovery.ShouldIgnore(rel)
		}),
		watcher.WithLogger(p.logger),
	)
}

// existing drops paths that no longer exist.
func existing(files []string) []string {
	var out []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			out = append(out, f)
		}
	}
	return out
}
