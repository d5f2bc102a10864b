package repository

import (
	"context"

	"infolock/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Ownership-scoped lookups return sql.ErrNoRows when the row exists but belongs
// to a different owner, so callers cannot distinguish the two cases.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by ID regardless of owner. Reserved for the
	// share-link engine, which performs its own ownership checks.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByIDAndOwner returns a document only when it is owned by ownerID.
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Document, error)

	// ListByOwner returns all documents owned by ownerID in insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error)

	// ListByOwnerAndCategory filters ListByOwner by the free-text category tag.
	ListByOwnerAndCategory(ctx context.Context, ownerID, category string) ([]model.Document, error)

	// Update persists all mutable fields of doc and returns the stored row.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
