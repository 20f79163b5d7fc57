package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Writer stores design files and export documents.
type Writer struct {
	db  *sql.DB
	now func() time.Time
}

// NewWriter creates a Writer instance.
// DB must have schema already created via CreateSchema().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db, now: time.Now}
}

// NewRunID returns a fresh export run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func recordID(parent string, ordinal int) string {
	return fmt.Sprintf("%s::%d", parent, ordinal)
}

// WriteContext replaces everything stored for c.Path with the units of c,
// in a single transaction.
func (w *Writer) WriteContext(c *hdlobjects.Context, fileHash string) error {
	if c == nil {
		return fmt.Errorf("%w: nil context", hdlobjects.ErrInvalidArgument)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Cascades to entities, architectures and instances
	_, err = sq.Delete("files").
		Where(sq.Eq{"file_path": c.Path}).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to clear file %s: %w", c.Path, err)
	}

	_, err = sq.Insert("files").
		Columns("file_path", "language", "file_hash", "indexed_at").
		Values(c.Path, c.Language, fileHash, w.now().UTC().Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", c.Path, err)
	}

	for i, e := range c.Entities {
		_, err := sq.Insert("entities").
			Columns("entity_id", "file_path", "name", "ordinal",
				"generic_count", "port_count", "start_line", "start_col").
			Values(recordID(c.Path, i), c.Path, e.Name(), i,
				len(e.Generics), len(e.Ports), e.Pos.Line, e.Pos.Col).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to write entity %s: %w", e.Name(), err)
		}
	}

	for i, a := range c.Architectures {
		archID := recordID(c.Path, i)
		_, err := sq.Insert("architectures").
			Columns("arch_id", "file_path", "name", "entity_name", "ordinal", "start_line", "start_col").
			Values(archID, c.Path, a.Name(), a.EntityName(), i, a.Pos.Line, a.Pos.Col).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to write architecture %s: %w", a.Name(), err)
		}

		if err := writeInstances(tx, archID, a.ComponentInstances()); err != nil {
			return fmt.Errorf("architecture %s: %w", a.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", c.Path, err)
	}

	return nil
}

func writeInstances(tx *sql.Tx, archID string, instances []*hdlobjects.CompInstance) error {
	if len(instances) == 0 {
		return nil
	}

	// Build the query once with Squirrel, then get SQL for preparation
	sqlStr, _, err := sq.Insert("component_instances").
		Columns("instance_id", "arch_id", "name", "entity_name", "kind",
			"library", "architecture", "ordinal", "start_line", "start_col").
		Values("", "", "", "", "", "", "", 0, 0, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, inst := range instances {
		_, err := stmt.Exec(
			recordID(archID, i),
			archID,
			inst.Name(),
			inst.EntityName,
			string(inst.Kind),
			inst.Library,
			inst.ArchName,
			i,
			inst.Pos.Line,
			inst.Pos.Col,
		)
		if err != nil {
			return fmt.Errorf("failed to insert instance %s: %w", inst.Name(), err)
		}
	}
	return nil
}

// DeleteFile removes a file and, through cascades, its design units.
func (w *Writer) DeleteFile(filePath string) error {
	_, err := sq.Delete("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// WriteExport stores the export document of one file under runID. Writing
// the same run and file again replaces the document.
func (w *Writer) WriteExport(runID, filePath string, doc jsonvalue.Value) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode export for %s: %w", filePath, err)
	}

	_, err = sq.Insert("exports").
		Columns("run_id", "file_path", "document", "created_at").
		Values(runID, filePath, string(data), w.now().UTC().Format(exportTimeFormat)).
		Options("OR REPLACE").
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write export for %s: %w", filePath, err)
	}
	return nil
}
