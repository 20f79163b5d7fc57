// Package watcher reports changed HDL source files, debounced, so the
// exporter can re-run on edits.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/hdlast/internal/logging"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher monitors source files for changes with debouncing and
// pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced, sorted batches
	// of changed files.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the watcher and waits for the event loop to exit.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating events.
	Pause()

	// Resume resumes firing callbacks, flushing anything accumulated.
	Resume()
}

// Option configures a FileWatcher.
type Option func(*fileWatcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(fw *fileWatcher) { fw.debounce = d }
}

// WithFilter restricts reported files to those accepted by match. The path
// passed to match is the event path.
func WithFilter(match func(path string) bool) Option {
	return func(fw *fileWatcher) { fw.match = match }
}

// WithSkipDir prevents watching directories accepted by skip.
func WithSkipDir(skip func(path string) bool) Option {
	return func(fw *fileWatcher) { fw.skipDir = skip }
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *log.Logger) Option {
	return func(fw *fileWatcher) { fw.logger = l }
}

type fileWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	match      func(string) bool
	skipDir    func(string) bool
	debounce   time.Duration
	logger     *log.Logger

	callback func(files []string)
	cancel   context.CancelFunc

	mu      sync.Mutex // guards paused, pending, timer
	paused  bool
	pending map[string]bool
	timer   *time.Timer

	flushCh  chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher watches dirs recursively for files with one of the given
// extensions (case-insensitive, with leading dot).
func NewFileWatcher(dirs []string, extensions []string, opts ...Option) (FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:    w,
		extensions: make(map[string]bool, len(extensions)),
		debounce:   DefaultDebounce,
		logger:     logging.Discard(),
		pending:    make(map[string]bool),
		flushCh:    make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}
	for _, ext := range extensions {
		fw.extensions[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(fw)
	}

	for _, dir := range dirs {
		if err := fw.addRecursive(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}
	fw.callback = callback
	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.loop(ctx)
	return nil
}

func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) Pause() {
	fw.mu.Lock()
	fw.paused = true
	fw.mu.Unlock()
}

func (fw *fileWatcher) Resume() {
	fw.mu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.mu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fileWatcher) loop(ctx context.Context) {
	defer close(fw.doneCh)

	for {
		select {
		case <-ctx.Done():
			fw.mu.Lock()
			if fw.timer != nil {
				fw.timer.Stop()
			}
			fw.mu.Unlock()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case <-fw.flushCh:
			fw.flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("File watcher error", "err", err)
		}
	}
}

func (fw *fileWatcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addRecursive(event.Name); err != nil {
				fw.logger.Warn("Failed to watch new directory", "dir", event.Name, "err", err)
			}
			return
		}
	}
	if !fw.relevant(event) {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.pending[event.Name] = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fw.flushCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !fw.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return false
	}
	return fw.match == nil || fw.match(event.Name)
}

func (fw *fileWatcher) flush() {
	fw.mu.Lock()
	if fw.paused || len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for f := range fw.pending {
		files = append(files, f)
	}
	fw.pending = make(map[string]bool)
	fw.mu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

func (fw *fileWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fw.logger.Warn("Cannot access path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && fw.skipDir != nil && fw.skipDir(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", "dir", path, "err", err)
		}
		return nil
	})
}
