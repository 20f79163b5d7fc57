package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing row
	ErrNotFound = errors.New("not found")

	// ErrSchemaMismatch indicates a database written by another schema version
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// exportTimeFormat sorts lexically in time order.
const exportTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// FileRecord is one indexed source file.
type FileRecord struct {
	FilePath  string
	Language  string
	FileHash  string
	IndexedAt time.Time
}

// EntityRecord is one stored entity or module header.
type EntityRecord struct {
	ID           string
	FilePath     string
	Name         string
	Ordinal      int
	GenericCount int
	PortCount    int
	Line         int
	Col          int
}

// ArchRecord is one stored architecture.
type ArchRecord struct {
	ID         string
	FilePath   string
	Name       string
	EntityName string
	Ordinal    int
	Line       int
	Col        int
}

// InstanceRecord is one stored component instance.
type InstanceRecord struct {
	ID           string
	ArchID       string
	Name         string
	EntityName   string
	Kind         string
	Library      string
	Architecture string
	Ordinal      int
	Line         int
	Col          int
}

// ExportRecord is one stored export document.
type ExportRecord struct {
	RunID     string
	FilePath  string
	Document  string
	CreatedAt time.Time
}
