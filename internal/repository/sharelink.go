package repository

import (
	"context"
	"errors"
	"time"

	"infolock/internal/model"
)

// ErrPublicLinkExists is returned by Create when another public link already
// exists for the same document (enforced by a partial unique index). Callers
// losing this race should re-read the surviving link.
var ErrPublicLinkExists = errors.New("public share link already exists for document")

// ShareLinkRepository defines data access for share links.
type ShareLinkRepository interface {
	// Create inserts a new share link and returns the stored row.
	Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error)

	// FindPublicByDocument returns the public-flagged link for a document, or
	// sql.ErrNoRows if none exists.
	FindPublicByDocument(ctx context.Context, documentID string) (*model.ShareLink, error)

	// ExistsPublicByDocument reports whether any public-flagged link exists for
	// the document, regardless of active or expiry state.
	ExistsPublicByDocument(ctx context.Context, documentID string) (bool, error)

	// SetPublic flips the is_public flag of a link in place.
	SetPublic(ctx context.Context, id string, isPublic bool) error

	// Deactivate sets is_active=false for the matching token. It is a no-op
	// (not an error) when the token does not exist.
	Deactivate(ctx context.Context, token string) error

	// ConsumeView atomically increments the view count of a usable link and
	// returns the associated document ID. A link is usable when it is active,
	// unexpired at now, and under its view limit. Returns sql.ErrNoRows when
	// the token is missing or unusable; the increment and the usability check
	// execute as a single statement so concurrent calls cannot lose updates or
	// exceed the limit.
	ConsumeView(ctx context.Context, token string, now time.Time) (string, error)
}
