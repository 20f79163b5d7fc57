package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/hdlast/internal/cache"
	"github.com/mvp-joe/hdlast/internal/config"
	"github.com/mvp-joe/hdlast/internal/discovery"
	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/frontend/builtin"
	"github.com/mvp-joe/hdlast/internal/logging"
)

var (
	rootFlag    string
	verboseFlag bool
	quietFlag   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hdlast",
	Short: "hdlast - export VHDL and Verilog design units as JSON",
	Long: `hdlast parses VHDL and Verilog sources into a small AST of entities,
architectures and component instances, and exports each design file as a
deterministic JSON document.

Configuration is read from .hdlast/config.yml in the project root and can be
overridden with HDLAST_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "C", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only print errors")
}

// project is everything a command needs to work on one source tree.
type project struct {
	root      string
	cfg       *config.Config
	logger    *log.Logger
	discovery *discovery.FileDiscovery
	cache     *cache.ParseCache
}

// openProject loads configuration for root and builds the shared pieces.
// Logs go to logOut.
func openProject(root string, logOut io.Writer, verbose, quiet bool) (*project, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}
	logger := logging.New(logOut, level)

	fd, err := discovery.New(root, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}

	pc, err := cache.New(cfg.Cache.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}

	logger.Debug("project opened", "root", root, "db", cfg.Storage.DBPath, "cache", cfg.Cache.Capacity)
	return &project{root: root, cfg: cfg, logger: logger, discovery: fd, cache: pc}, nil
}

// exportOverrides are command line settings that win over the config file.
type exportOverrides struct {
	pretty        bool
	sortInstances bool
	outputDir     string
}

func (p *project) newExporter(o exportOverrides, progress exporter.ProgressReporter) *exporter.Exporter {
	opts := exporter.Options{
		Root:          p.root,
		Concurrency:   p.cfg.Export.Concurrency,
		SortInstances: p.cfg.Export.SortInstances || o.sortInstances,
		OutputDir:     p.outputDir(o),
	}
	if p.cfg.Export.Pretty || o.pretty {
		opts.Indent = p.cfg.Export.Indent
		if opts.Indent == "" {
			opts.Indent = "  "
		}
	}
	return exporter.New(builtin.NewRegistry(), p.cache, opts, progress)
}

// outputDir is the --output-dir flag when set, else the configured
// directory. Empty means stdout.
func (p *project) outputDir(o exportOverrides) string {
	if o.outputDir != "" {
		return o.outputDir
	}
	return p.resolve(p.cfg.Export.OutputDir)
}

// resolve makes a config path absolute against the project root.
func (p *project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.root, path)
}

func (p *project) dbPath() string {
	return p.resolve(p.cfg.Storage.DBPath)
}

// sources returns the files to process for the given command line paths.
// No paths means every discovered file; a directory expands to the
// discovered files below it.
func (p *project) sources(ctx context.Context, paths []string) ([]string, error) {
	all, err := p.discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	if len(paths) == 0 {
		return all, nil
	}

	var files []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	for _, arg := range paths {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		prefix := abs + string(filepath.Separator)
		for _, f := range all {
			if strings.HasPrefix(f, prefix) {
				add(f)
			}
		}
	}
	return files, nil
}

// relPath returns path relative to the project root with forward slashes.
func (p *project) relPath(path string) (string, bool) {
	rel, err := filepath.Rel(p.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (p *project) Close() {
	p.cache.Close()
}

// commandContext returns a context carrying the project logger that is
// cancelled on SIGINT or SIGTERM.
func commandContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(logging.WithLogger(parent, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("interrupted, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
