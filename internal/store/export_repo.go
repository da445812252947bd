package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no export matches the id.
var ErrNotFound = errors.New("export not found")

// ExportRecord is one row of the export ledger.
type ExportRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Format      string    `db:"format" json:"format"`
	Filename    string    `db:"filename" json:"filename"`
	ContentType string    `db:"content_type" json:"contentType"`
	SizeBytes   int64     `db:"size_bytes" json:"sizeBytes"`
	WordCount   int       `db:"word_count" json:"wordCount"`
	PageCount   int       `db:"page_count" json:"pageCount"`
	StorageURL  string    `db:"storage_url" json:"storageUrl,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ExportRepo reads and writes export records.
type ExportRepo struct {
	db *sqlx.DB
}

// NewExportRepo wraps an open connection.
func NewExportRepo(db *sqlx.DB) *ExportRepo {
	return &ExportRepo{db: db}
}

// Close closes the underlying connection.
func (r *ExportRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("closing export repo: %w", err)
	}
	return nil
}

// Insert stores rec, assigning an id and timestamp when they are unset.
func (r *ExportRepo) Insert(ctx context.Context, rec *ExportRecord) error {
	if rec.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("creating export id: %w", err)
		}
		rec.ID = id
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO exports
		(id, title, author, format, filename, content_type, size_bytes, word_count, page_count, storage_url, created_at)
		VALUES
		(:id, :title, :author, :format, :filename, :content_type, :size_bytes, :word_count, :page_count, :storage_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("inserting export %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the export with the given id.
func (r *ExportRepo) Get(ctx context.Context, id uuid.UUID) (*ExportRecord, error) {
	var rec ExportRecord
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM exports WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting export %s: %w", id, err)
	}
	return &rec, nil
}

// List returns the most recent exports first. limit <= 0 means 50.
func (r *ExportRepo) List(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	recs := []ExportRecord{}
	err := r.db.SelectContext(ctx, &recs, `SELECT * FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return recs, nil
}
