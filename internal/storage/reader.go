package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Reader queries the design index.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader instance.
// DB should have schema already created.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// File returns the record for filePath.
func (r *Reader) File(filePath string) (*FileRecord, error) {
	rec := &FileRecord{}
	var indexedAt string

	err := sq.Select("file_path", "language", "file_hash", "indexed_at").
		From("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(r.db).
		QueryRow().
		Scan(&rec.FilePath, &rec.Language, &rec.FileHash, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", filePath, err)
	}

	rec.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return rec, nil
}

// Files returns every indexed file ordered by path.
func (r *Reader) Files() ([]*FileRecord, error) {
	rows, err := sq.Select("file_path", "language", "file_hash", "indexed_at").
		From("files").
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var out []*FileRecord
	for rows.Next() {
		rec := &FileRecord{}
		var indexedAt string
		if err := rows.Scan(&rec.FilePath, &rec.Language, &rec.FileHash, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		rec.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Entities returns the entities of filePath in declaration order.
func (r *Reader) Entities(filePath string) ([]*EntityRecord, error) {
	rows, err := sq.Select("entity_id", "file_path", "name", "ordinal",
		"generic_count", "port_count", "start_line", "start_col").
		From("entities").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("ordinal").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query entities of %s: %w", filePath, err)
	}
	defer rows.Close()

	var out []*EntityRecord
	for rows.Next() {
		e := &EntityRecord{}
		if err := rows.Scan(&e.ID, &e.FilePath, &e.Name, &e.Ordinal,
			&e.GenericCount, &e.PortCount, &e.Line, &e.Col); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Architectures returns the architectures of filePath in declaration order.
func (r *Reader) Architectures(filePath string) ([]*ArchRecord, error) {
	return r.queryArchitectures(sq.Eq{"file_path": filePath})
}

// Architecture returns the architecture with the given id.
func (r *Reader) Architecture(archID string) (*ArchRecord, error) {
	archs, err := r.queryArchitectures(sq.Eq{"arch_id": archID})
	if err != nil {
		return nil, err
	}
	if len(archs) == 0 {
		return nil, fmt.Errorf("%w: architecture %s", ErrNotFound, archID)
	}
	return archs[0], nil
}

// ArchitecturesOf returns every architecture of an entity across files,
// matching the name case-insensitively.
func (r *Reader) ArchitecturesOf(entityName string) ([]*ArchRecord, error) {
	return r.queryArchitectures(sq.Expr("entity_name = ? COLLATE NOCASE", entityName))
}

func (r *Reader) queryArchitectures(where sq.Sqlizer) ([]*ArchRecord, error) {
	rows, err := sq.Select("arch_id", "file_path", "name", "entity_name", "ordinal", "start_line", "start_col").
		From("architectures").
		Where(where).
		OrderBy("file_path", "ordinal").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query architectures: %w", err)
	}
	defer rows.Close()

	var out []*ArchRecord
	for rows.Next() {
		a := &ArchRecord{}
		if err := rows.Scan(&a.ID, &a.FilePath, &a.Name, &a.EntityName, &a.Ordinal, &a.Line, &a.Col); err != nil {
			return nil, fmt.Errorf("failed to scan architecture: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Instances returns the component instances of an architecture in
// declaration order.
func (r *Reader) Instances(archID string) ([]*InstanceRecord, error) {
	return r.queryInstances(sq.Eq{"arch_id": archID})
}

// InstancesOf returns every instantiation of an entity, matching the name
// case-insensitively.
func (r *Reader) InstancesOf(entityName string) ([]*InstanceRecord, error) {
	return r.queryInstances(sq.Expr("entity_name = ? COLLATE NOCASE", entityName))
}

func (r *Reader) queryInstances(where sq.Sqlizer) ([]*InstanceRecord, error) {
	rows, err := sq.Select("instance_id", "arch_id", "name", "entity_name", "kind",
		"library", "architecture", "ordinal", "start_line", "start_col").
		From("component_instances").
		Where(where).
		OrderBy("arch_id", "ordinal").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var out []*InstanceRecord
	for rows.Next() {
		i := &InstanceRecord{}
		if err := rows.Scan(&i.ID, &i.ArchID, &i.Name, &i.EntityName, &i.Kind,
			&i.Library, &i.Architecture, &i.Ordinal, &i.Line, &i.Col); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Export returns the stored document of filePath in runID.
func (r *Reader) Export(runID, filePath string) (jsonvalue.Value, error) {
	var doc string
	err := sq.Select("document").
		From("exports").
		Where(sq.Eq{"run_id": runID, "file_path": filePath}).
		RunWith(r.db).
		QueryRow().
		Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return jsonvalue.Null(), fmt.Errorf("%w: export %s of run %s", ErrNotFound, filePath, runID)
	}
	if err != nil {
		return jsonvalue.Null(), fmt.Errorf("failed to get export %s: %w", filePath, err)
	}
	return jsonvalue.Parse([]byte(doc))
}

// ExportsOf returns every document of runID ordered by file path.
func (r *Reader) ExportsOf(runID string) ([]*ExportRecord, error) {
	rows, err := sq.Select("run_id", "file_path", "document", "created_at").
		From("exports").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query exports of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []*ExportRecord
	for rows.Next() {
		e := &ExportRecord{}
		var created string
		if err := rows.Scan(&e.RunID, &e.FilePath, &e.Document, &created); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		e.CreatedAt, _ = time.Parse(exportTimeFormat, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestRun returns the run id of the most recent export.
func (r *Reader) LatestRun() (string, error) {
	var runID string
	err := sq.Select("run_id").
		From("exports").
		OrderBy("created_at DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: no export runs", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return runID, nil
}
