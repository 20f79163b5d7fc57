// Package frontend defines the interface implemented by HDL parsers and a
// registry that picks a parser by file extension.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

var (
	// ErrSyntax is wrapped by every SyntaxError.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedFile is returned when no frontend handles a file extension.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrDuplicateLanguage is returned when a language is registered twice.
	ErrDuplicateLanguage = errors.New("duplicate language")
)

// Frontend turns one HDL source file into a design file context.
type Frontend interface {
	// Language returns the language identifier, e.g. "vhdl".
	Language() string
	// Extensions returns the file extensions handled, with leading dot.
	Extensions() []string
	// Parse builds the context for the file at path from src.
	Parse(ctx context.Context, path string, src []byte) (*hdlobjects.Context, error)
}

// SyntaxError reports a malformed construct at a source position.
type SyntaxError struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// Unwrap makes errors.Is(err, ErrSyntax) true.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Registry maps languages and file extensions to frontends. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	byLanguage map[string]Frontend
	byExt      map[string]Frontend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage: make(map[string]Frontend),
		byExt:      make(map[string]Frontend),
	}
}

// Register adds f. An extension already claimed by another frontend stays
// with the first one.
func (r *Registry) Register(f Frontend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lang := strings.ToLower(f.Language())
	if _, exists := r.byLanguage[lang]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLanguage, lang)
	}
	r.byLanguage[lang] = f

	for _, ext := range f.Extensions() {
		ext = strings.ToLower(ext)
		if _, taken := r.byExt[ext]; !taken {
			r.byExt[ext] = f
		}
	}
	return nil
}

// ForLanguage returns the frontend registered for lang.
func (r *Registry) ForLanguage(lang string) (Frontend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byLanguage[strings.ToLower(lang)]
	return f, ok
}

// ForPath returns the frontend for the extension of path, ignoring case.
func (r *Registry) ForPath(path string) (Frontend, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	f, ok := r.byExt[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	return f, nil
}

// Supports reports whether some frontend handles path.
func (r *Registry) Supports(path string) bool {
	_, err := r.ForPath(path)
	return err == nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse dispatches to the frontend for path.
func (r *Registry) Parse(ctx context.Context, path string, src []byte) (*hdlobjects.Context, error) {
	f, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return f.Parse(ctx, path, src)
}
