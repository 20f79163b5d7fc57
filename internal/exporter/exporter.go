// Package exporter parses HDL files through the frontend registry and turns
// each file context into its JSON export document.
package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/hdlast/internal/cache"
	"github.com/mvp-joe/hdlast/internal/discovery"
	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
	"github.com/mvp-joe/hdlast/internal/logging"
)

// Options controls an export run.
type Options struct {
	// Root is the directory paths are reported relative to. Empty means the
	// current directory.
	Root string

	// Concurrency bounds the number of files parsed at once.
	Concurrency int

	// SortInstances orders component instances by name in the documents.
	SortInstances bool

	// Indent pretty-prints output when non-empty.
	Indent string

	// OutputDir is where WriteFiles places <relpath>.json documents.
	OutputDir string
}

// Result is the outcome for one file. Err is set when the file could not be
// read, parsed or serialized; Document is then null.
type Result struct {
	Path     string
	RelPath  string
	Language string
	Context  *hdlobjects.Context
	Document jsonvalue.Value
	Cached   bool
	Err      error
}

// Exporter turns HDL files into export documents.
type Exporter struct {
	registry *frontend.Registry
	cache    *cache.ParseCache
	opts     Options
	progress ProgressReporter
}

// New creates an exporter. cache may be nil and progress may be nil.
func New(registry *frontend.Registry, c *cache.ParseCache, opts Options, progress ProgressReporter) *Exporter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Exporter{registry: registry, cache: c, opts: opts, progress: progress}
}

// WithSortInstances returns a copy of e that orders instances by name.
func (e *Exporter) WithSortInstances(sorted bool) *Exporter {
	cp := *e
	cp.opts.SortInstances = sorted
	return &cp
}

// Root returns the directory result paths are relative to.
func (e *Exporter) Root() string {
	if e.opts.Root == "" {
		return "."
	}
	return e.opts.Root
}

// ExportDir discovers files with fd and exports them.
func (e *Exporter) ExportDir(ctx context.Context, fd *discovery.FileDiscovery) ([]Result, *Stats, error) {
	e.progress.OnDiscoveryStart()
	files, err := fd.Discover(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}
	e.progress.OnDiscoveryComplete(len(files))
	return e.ExportFiles(ctx, files)
}

// ExportFiles parses paths concurrently and returns one result per path, in
// input order. A failing file does not stop the others; only cancellation of
// ctx aborts the run.
func (e *Exporter) ExportFiles(ctx context.Context, paths []string) ([]Result, *Stats, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	e.progress.OnFileProcessingStart(len(paths))

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := e.ExportFile(gctx, path)
			if r.Err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("Export failed", "file", r.RelPath, "err", r.Err)
			}
			results[i] = r

			mu.Lock()
			e.progress.OnFileProcessed(r.RelPath, r.Err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{Files: len(results), Duration: time.Since(start)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			stats.Failed++
			continue
		case r.Cached:
			stats.Cached++
		}
		stats.Entities += len(r.Context.Entities)
		stats.Architectures += len(r.Context.Architectures)
		stats.Instances += r.Context.InstanceCount()
	}
	e.progress.OnComplete(stats)
	logger.Debug("Export run finished",
		"files", stats.Files, "failed", stats.Failed, "cached", stats.Cached,
		"duration", stats.Duration)

	return results, stats, nil
}

// ExportFile reads, parses and serializes a single file.
func (e *Exporter) ExportFile(ctx context.Context, path string) Result {
	r := Result{Path: path, RelPath: e.relPath(path)}

	fe, err := e.registry.ForPath(path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Language = fe.Language()

	src, err := os.ReadFile(path)
	if err != nil {
		r.Err = fmt.Errorf("failed to read %s: %w", r.RelPath, err)
		return r
	}

	key := cache.Key(r.Language, r.RelPath, src)
	hctx, ok := e.cache.Get(key)
	if ok {
		r.Cached = true
	} else {
		hctx, err = fe.Parse(ctx, r.RelPath, src)
		if err != nil {
			r.Err = err
			return r
		}
		e.cache.Put(key, hctx)
	}
	r.Context = hctx

	doc, err := hctx.SerializeWith(hdlobjects.SerializeOptions{SortInstances: e.opts.SortInstances})
	if err != nil {
		r.Err = fmt.Errorf("failed to serialize %s: %w", r.RelPath, err)
		return r
	}
	r.Document = doc
	return r
}

func (e *Exporter) relPath(path string) string {
	absRoot, err1 := filepath.Abs(e.Root())
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Write streams the documents of successful results to w in result order.
func (e *Exporter) Write(w io.Writer, results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := jsonvalue.Encode(w, r.Document, e.opts.Indent); err != nil {
			return fmt.Errorf("failed to encode %s: %w", r.RelPath, err)
		}
	}
	return nil
}

// WriteFiles writes each successful document to OutputDir/<relpath>.json and
// returns the written paths.
func (e *Exporter) WriteFiles(results []Result) ([]string, error) {
	if e.opts.OutputDir == "" {
		return nil, fmt.Errorf("no output directory configured")
	}

	var written []string
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rel := filepath.FromSlash(strings.TrimLeft(r.RelPath, "/"))
		dest := filepath.Join(e.opts.OutputDir, rel+".json")
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return written, fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(dest)
		if err != nil {
			return written, fmt.Errorf("failed to create %s: %w", dest, err)
		}
		err = jsonvalue.Encode(f, r.Document, e.opts.Indent)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		written = append(written, dest)
	}
	return written, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
