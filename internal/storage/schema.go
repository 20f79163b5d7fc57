package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written to the metadata table by CreateSchema.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes of the design index.
// Uses a transaction so schema creation succeeds or fails as a whole.
//
// Schema includes:
//   - files: one row per indexed source file
//   - entities, architectures, component_instances: the design units of a
//     file, cascading from files
//   - exports: serialized documents grouped by export run
//   - metadata: key/value bootstrap data
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"entities", createEntitiesTable},
		{"architectures", createArchitecturesTable},
		{"component_instances", createComponentInstancesTable},
		{"exports", createExportsTable},
		{"metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the schema version, or "0" for a database that
// has no schema yet.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE files (
    file_path TEXT PRIMARY KEY,
    language TEXT NOT NULL,
    file_hash TEXT NOT NULL,                     -- SHA-256 of the source
    indexed_at TEXT NOT NULL                     -- RFC3339
)`

const createEntitiesTable = `
CREATE TABLE entities (
    entity_id TEXT PRIMARY KEY,                  -- {file_path}::{ordinal}
    file_path TEXT NOT NULL,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    generic_count INTEGER NOT NULL DEFAULT 0,
    port_count INTEGER NOT NULL DEFAULT 0,
    start_line INTEGER NOT NULL DEFAULT 0,
    start_col INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)`

const createArchitecturesTable = `
CREATE TABLE architectures (
    arch_id TEXT PRIMARY KEY,                    -- {file_path}::{ordinal}
    file_path TEXT NOT NULL,
    name TEXT NOT NULL,
    entity_name TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL,
    start_line INTEGER NOT NULL DEFAULT 0,
    start_col INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)`

const createComponentInstancesTable = `
CREATE TABLE component_instances (
    instance_id TEXT PRIMARY KEY,                -- {arch_id}::{ordinal}
    arch_id TEXT NOT NULL,
    name TEXT NOT NULL,
    entity_name TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL DEFAULT '',               -- component, entity, configuration, module
    library TEXT NOT NULL DEFAULT '',
    architecture TEXT NOT NULL DEFAULT '',       -- explicit (arch) binding
    ordinal INTEGER NOT NULL,
    start_line INTEGER NOT NULL DEFAULT 0,
    start_col INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (arch_id) REFERENCES architectures(arch_id) ON DELETE CASCADE
)`

const createExportsTable = `
CREATE TABLE exports (
    run_id TEXT NOT NULL,                        -- UUID per export run
    file_path TEXT NOT NULL,
    document TEXT NOT NULL,                      -- compact JSON
    created_at TEXT NOT NULL,                    -- RFC3339, fixed-width nanoseconds
    PRIMARY KEY (run_id, file_path)
)`

const createMetadataTable = `
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_files_language ON files(language)",
		"CREATE INDEX idx_entities_file_path ON entities(file_path)",
		"CREATE INDEX idx_entities_name ON entities(name COLLATE NOCASE)",
		"CREATE INDEX idx_architectures_file_path ON architectures(file_path)",
		"CREATE INDEX idx_architectures_entity ON architectures(entity_name COLLATE NOCASE)",
		"CREATE INDEX idx_component_instances_arch ON component_instances(arch_id)",
		"CREATE INDEX idx_component_instances_entity ON component_instances(entity_name COLLATE NOCASE)",
		"CREATE INDEX idx_exports_created ON exports(created_at)",
	}
}
