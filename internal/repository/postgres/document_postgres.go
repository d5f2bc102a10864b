package postgres

import (
	"context"
	"database/sql"

	"infolock/internal/model"
	"infolock/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, owner_id, filename, file_type, category, size, storage_path, upload_date`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, owner_id, filename, file_type, category, size, storage_path, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OwnerID,
		doc.FileName,
		doc.FileType,
		doc.Category,
		doc.FileSize,
		doc.StoragePath,
		doc.UploadDate,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID, regardless of owner.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDAndOwner fetches a document only when owned by ownerID. A document
// owned by someone else scans as sql.ErrNoRows, same as a missing one.
func (r *DocumentPostgres) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListByOwner returns all documents of an owner in insertion order.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY upload_date, id
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// ListByOwnerAndCategory returns an owner's documents matching a category tag.
func (r *DocumentPostgres) ListByOwnerAndCategory(ctx context.Context, ownerID, category string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 AND category = $2
		ORDER BY upload_date, id
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, category)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// Update persists all mutable fields and returns the stored record.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET filename = $2, file_type = $3, category = $4, size = $5, storage_path = $6, upload_date = $7
		WHERE id = $1
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.FileName,
		doc.FileType,
		doc.Category,
		doc.FileSize,
		doc.StoragePath,
		doc.UploadDate,
	)
	return scanDocument(row)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.FileName,
		&d.FileType,
		&d.Category,
		&d.FileSize,
		&d.StoragePath,
		&d.UploadDate,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
