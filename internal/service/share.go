package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"infolock/internal/config"
	"infolock/internal/model"
	"infolock/internal/repository"
	"infolock/internal/storage"
)

var (
	ErrDocumentNotFound = errors.New("shared document not found")
	ErrLinkNotFound     = errors.New("share link not found or expired")
)

// Policy applied when toggle-public has to create a link from scratch. It
// intentionally differs from Create, where the caller picks the policy; see
// DESIGN.md before unifying the two.
const (
	defaultPublicExpiryDays = 30
	defaultPublicMaxViews   = 100
)

// ShareResponse is the service-level DTO returned for share links.
type ShareResponse struct {
	ShareToken  string     `json:"shareToken"`
	ShareURL    string     `json:"shareUrl"`
	CreatedDate time.Time  `json:"createdDate"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	MaxViews    *int       `json:"maxViews,omitempty"`
	IsPublic    bool       `json:"isPublic"`
}

// ShareService is the share-link engine: token issuance, resolution with view
// accounting, public/private toggling, and ownership checks.
type ShareService interface {
	// Create issues a share link for a document. When a public link already
	// exists and the request asks for a public one, the existing link is
	// returned unchanged. Expiry is now + expiryDays when expiryDays > 0;
	// nil or non-positive means no expiry. A nil maxViews means unlimited.
	Create(ctx context.Context, documentID string, isPublic bool, expiryDays, maxViews *int) (*ShareResponse, error)

	// Resolve exchanges a token for the underlying document's content stream
	// and metadata, counting the view. Unknown, deactivated, expired, or
	// view-exhausted tokens return ErrLinkNotFound. The caller must close the
	// reader.
	Resolve(ctx context.Context, tok string) (io.ReadCloser, *model.Document, error)

	// IsOwner reports whether the document exists and is owned by the user
	// with the given username. A missing document is false, not an error.
	IsOwner(ctx context.Context, documentID, username string) (bool, error)

	// TogglePublic flips the public flag of a document's existing public link
	// in place, or creates a new link under the default policy when turning
	// public on with no link present.
	TogglePublic(ctx context.Context, documentID string, isPublic bool) error

	// Deactivate soft-deletes the link with the given token; unknown tokens
	// are a no-op.
	Deactivate(ctx context.Context, tok string) error

	// IsPublic reports whether any public-flagged link exists for the
	// document. Active and expiry state are not consulted: this answers "is
	// the document nominally public", not "is some token currently usable".
	IsPublic(ctx context.Context, documentID string) (bool, error)
}

type shareService struct {
	links repository.ShareLinkRepository
	docs  repository.DocumentRepository
	users repository.UserRepository
	store storage.Storage
	cfg   config.ShareConfig
}

// NewShareService constructs a new ShareService.
func NewShareService(
	links repository.ShareLinkRepository,
	docs repository.DocumentRepository,
	users repository.UserRepository,
	store storage.Storage,
	cfg config.ShareConfig,
) ShareService {
	return &shareService{links: links, docs: docs, users: users, store: store, cfg: cfg}
}

func (s *shareService) Create(ctx context.Context, documentID string, isPublic bool, expiryDays, maxViews *int) (*ShareResponse, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	existing, err := s.links.FindPublicByDocument(ctx, doc.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil && isPublic {
		// Idempotent reuse: the same public token is handed out again.
		return s.toResponse(existing), nil
	}

	link, err := s.insertLink(ctx, doc.ID, isPublic, calculateExpiry(expiryDays), maxViews)
	if err != nil {
		return nil, err
	}
	return s.toResponse(link), nil
}

func (s *shareService) Resolve(ctx context.Context, tok string) (io.ReadCloser, *model.Document, error) {
	documentID, err := s.links.ConsumeView(ctx, tok, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrLinkNotFound
		}
		return nil, nil, err
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Link outlived its document; treat as unusable.
			return nil, nil, ErrLinkNotFound
		}
		return nil, nil, err
	}

	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch content: %w", err)
	}
	return rc, doc, nil
}

func (s *shareService) IsOwner(ctx context.Context, documentID, username string) (bool, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	owner, err := s.users.FindByID(ctx, doc.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return owner.Username == username, nil
}

func (s *shareService) TogglePublic(ctx context.Context, documentID string, isPublic bool) error {
	existing, err := s.links.FindPublicByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if existing != nil {
		return s.links.SetPublic(ctx, existing.ID, isPublic)
	}
	if !isPublic {
		return nil
	}

	if _, err := s.docs.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDocumentNotFound
		}
		return err
	}

	days := defaultPublicExpiryDays
	views := defaultPublicMaxViews
	_, err = s.insertLink(ctx, documentID, true, calculateExpiry(&days), &views)
	return err
}

func (s *shareService) Deactivate(ctx context.Context, tok string) error {
	return s.links.Deactivate(ctx, tok)
}

func (s *shareService) IsPublic(ctx context.Context, documentID string) (bool, error) {
	return s.links.ExistsPublicByDocument(ctx, documentID)
}

// insertLink writes a fresh link. If another caller won the race to create the
// document's public link, the surviving row is returned instead.
func (s *shareService) insertLink(ctx context.Context, documentID string, isPublic bool, expiry *time.Time, maxViews *int) (*model.ShareLink, error) {
	tok, err := generateToken()
	if err != nil {
		return nil, err
	}
	link, err := s.links.Create(ctx, &model.ShareLink{
		ID:          uuid.New().String(),
		Token:       tok,
		DocumentID:  documentID,
		CreatedDate: time.Now().UTC(),
		ExpiryDate:  expiry,
		IsActive:    true,
		MaxViews:    maxViews,
		ViewCount:   0,
		IsPublic:    isPublic,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPublicLinkExists) {
			return s.links.FindPublicByDocument(ctx, documentID)
		}
		return nil, err
	}
	return link, nil
}

// generateToken returns 128 bits from crypto/rand as compact lowercase hex.
func generateToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

func calculateExpiry(expiryDays *int) *time.Time {
	if expiryDays == nil || *expiryDays <= 0 {
		return nil
	}
	t := time.Now().UTC().AddDate(0, 0, *expiryDays)
	return &t
}

func (s *shareService) toResponse(link *model.ShareLink) *ShareResponse {
	return &ShareResponse{
		ShareToken:  link.Token,
		ShareURL:    s.cfg.FrontendURL + "/shared/" + link.Token,
		CreatedDate: link.CreatedDate,
		ExpiryDate:  link.ExpiryDate,
		MaxViews:    link.MaxViews,
		IsPublic:    link.IsPublic,
	}
}
