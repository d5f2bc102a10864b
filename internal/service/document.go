package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"infolock/internal/model"
	"infolock/internal/repository"
	"infolock/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrEmptyFile  = errors.New("file cannot be empty")
)

// DocumentView is the service-level DTO exposed over the API. It carries no
// ownership or storage internals.
type DocumentView struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	Category   string    `json:"category"`
	FileSize   int64     `json:"fileSize"`
	UploadDate time.Time `json:"uploadDate"`
}

// UpdateInput carries the optional fields of an update request. A nil File
// leaves the stored content untouched; empty Category/FileName strings leave
// the corresponding fields untouched.
type UpdateInput struct {
	ID          string
	OwnerID     string
	File        io.Reader
	Size        int64
	ContentType string
	Category    string
	FileName    string
}

// DocumentService defines the use cases for handling documents. Every
// operation takes the acting owner's ID; lookups that miss OR hit a document
// owned by someone else both return ErrNotFound, so existence is never leaked
// to non-owners.
type DocumentService interface {
	// Upload stores content in object storage, saves metadata to the DB, and
	// rolls the object back if the DB save fails.
	Upload(ctx context.Context, r io.Reader, size int64, contentType, category, filename, ownerID string) (*DocumentView, error)

	// List returns all documents owned by ownerID in insertion order.
	List(ctx context.Context, ownerID string) ([]DocumentView, error)

	// ListByCategory filters List by the free-text category tag.
	ListByCategory(ctx context.Context, ownerID, category string) ([]DocumentView, error)

	// Get returns a single owned document's metadata.
	Get(ctx context.Context, id, ownerID string) (*DocumentView, error)

	// Download returns the raw content stream plus metadata. The caller must
	// close the reader.
	Download(ctx context.Context, id, ownerID string) (io.ReadCloser, *DocumentView, error)

	// Update replaces the present fields of an owned document. New content
	// replaces type and size together; the upload date is always refreshed.
	Update(ctx context.Context, in UpdateInput) (*DocumentView, error)

	// Delete removes an owned document from both storage and the repository.
	Delete(ctx context.Context, id, ownerID string) error
}

type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, size int64, contentType, category, filename, ownerID string) (*DocumentView, error) {
	if r == nil || size <= 0 {
		return nil, ErrEmptyFile
	}

	key := objectKey(filename)
	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		FileName:    filename,
		FileType:    contentType,
		Category:    category,
		FileSize:    objInfo.Size,
		StoragePath: objInfo.Key,
		UploadDate:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return toView(stored), nil
}

func (s *documentService) List(ctx context.Context, ownerID string) ([]DocumentView, error) {
	docs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toViews(docs), nil
}

func (s *documentService) ListByCategory(ctx context.Context, ownerID, category string) ([]DocumentView, error) {
	docs, err := s.repo.ListByOwnerAndCategory(ctx, ownerID, category)
	if err != nil {
		return nil, err
	}
	return toViews(docs), nil
}

func (s *documentService) Get(ctx context.Context, id, ownerID string) (*DocumentView, error) {
	doc, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return toView(doc), nil
}

func (s *documentService) Download(ctx context.Context, id, ownerID string) (io.ReadCloser, *DocumentView, error) {
	doc, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch content: %w", err)
	}
	return rc, toView(doc), nil
}

func (s *documentService) Update(ctx context.Context, in UpdateInput) (*DocumentView, error) {
	doc, err := s.findOwned(ctx, in.ID, in.OwnerID)
	if err != nil {
		return nil, err
	}

	oldPath := ""
	if in.File != nil && in.Size > 0 {
		key := objectKey(firstNonEmpty(in.FileName, doc.FileName))
		objInfo, err := s.store.Put(ctx, key, in.File, storage.PutObjectOptions{
			Size:        in.Size,
			ContentType: in.ContentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload to storage: %w", err)
		}
		// Content, type, and size move together.
		oldPath = doc.StoragePath
		doc.StoragePath = objInfo.Key
		doc.FileSize = objInfo.Size
		doc.FileType = in.ContentType
	}
	if in.FileName != "" {
		doc.FileName = in.FileName
	}
	if in.Category != "" {
		doc.Category = in.Category
	}
	doc.UploadDate = time.Now().UTC()

	stored, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// The replaced object is orphaned once the row points elsewhere; removal
	// failures only leak storage and are not surfaced to the caller.
	if oldPath != "" {
		_ = s.store.Delete(ctx, oldPath)
	}
	return toView(stored), nil
}

func (s *documentService) Delete(ctx context.Context, id, ownerID string) error {
	doc, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *documentService) findOwned(ctx context.Context, id, ownerID string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// objectKey derives a unique storage key, keeping the original extension.
func objectKey(filename string) string {
	ext := filepath.Ext(filename)
	return filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func toView(d *model.Document) *DocumentView {
	return &DocumentView{
		ID:         d.ID,
		FileName:   d.FileName,
		FileType:   d.FileType,
		Category:   d.Category,
		FileSize:   d.FileSize,
		UploadDate: d.UploadDate,
	}
}

func toViews(docs []model.Document) []DocumentView {
	views := make([]DocumentView, 0, len(docs))
	for i := range docs {
		views = append(views, *toView(&docs[i]))
	}
	return views
}
