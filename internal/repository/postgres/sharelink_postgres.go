package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"infolock/internal/model"
	"infolock/internal/repository"
)

// ShareLinkPostgres is a PostgreSQL implementation of repository.ShareLinkRepository.
type ShareLinkPostgres struct {
	db *sql.DB
}

// NewShareLinkPostgres creates a new ShareLinkPostgres repository.
func NewShareLinkPostgres(db *sql.DB) *ShareLinkPostgres {
	return &ShareLinkPostgres{db: db}
}

var _ repository.ShareLinkRepository = (*ShareLinkPostgres)(nil)

const shareLinkColumns = `id, token, document_id, created_date, expiry_date, is_active, max_views, view_count, is_public`

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// Create inserts a new share link row and returns the stored record.
// Losing a race on the public-link partial unique index surfaces as
// repository.ErrPublicLinkExists.
func (r *ShareLinkPostgres) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	const q = `
		INSERT INTO share_links (id, token, document_id, created_date, expiry_date, is_active, max_views, view_count, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + shareLinkColumns
	row := r.db.QueryRowContext(ctx, q,
		link.ID,
		link.Token,
		link.DocumentID,
		link.CreatedDate,
		link.ExpiryDate,
		link.IsActive,
		link.MaxViews,
		link.ViewCount,
		link.IsPublic,
	)
	out, err := scanShareLink(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "uq_share_links_public_document" {
			return nil, repository.ErrPublicLinkExists
		}
		return nil, err
	}
	return out, nil
}

// FindPublicByDocument fetches the public-flagged link of a document.
func (r *ShareLinkPostgres) FindPublicByDocument(ctx context.Context, documentID string) (*model.ShareLink, error) {
	const q = `
		SELECT ` + shareLinkColumns + `
		FROM share_links
		WHERE document_id = $1 AND is_public
	`
	return scanShareLink(r.db.QueryRowContext(ctx, q, documentID))
}

// ExistsPublicByDocument reports whether a public-flagged link exists for a
// document. Active and expiry state are deliberately not considered.
func (r *ShareLinkPostgres) ExistsPublicByDocument(ctx context.Context, documentID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM share_links WHERE document_id = $1 AND is_public)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SetPublic flips the is_public flag of a link in place.
func (r *ShareLinkPostgres) SetPublic(ctx context.Context, id string, isPublic bool) error {
	const q = `UPDATE share_links SET is_public = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, isPublic)
	return err
}

// Deactivate soft-deletes a link by token; missing tokens are a no-op.
func (r *ShareLinkPostgres) Deactivate(ctx context.Context, token string) error {
	const q = `UPDATE share_links SET is_active = FALSE WHERE token = $1`
	_, err := r.db.ExecContext(ctx, q, token)
	return err
}

// ConsumeView increments the view count of a usable link and returns the
// document ID it points at. The usability predicate and the increment run in
// one UPDATE so two concurrent resolutions can never both observe the same
// view_count: the row lock serializes them and the WHERE clause is re-checked
// after the lock is acquired. Unusable or unknown tokens scan as sql.ErrNoRows.
func (r *ShareLinkPostgres) ConsumeView(ctx context.Context, token string, now time.Time) (string, error) {
	const q = `
		UPDATE share_links
		SET view_count = view_count + 1
		WHERE token = $1
		  AND is_active
		  AND (expiry_date IS NULL OR expiry_date > $2)
		  AND (max_views IS NULL OR view_count < max_views)
		RETURNING document_id
	`
	var documentID string
	if err := r.db.QueryRowContext(ctx, q, token, now).Scan(&documentID); err != nil {
		return "", err
	}
	return documentID, nil
}

func scanShareLink(row rowScanner) (*model.ShareLink, error) {
	var (
		l        model.ShareLink
		expiry   sql.NullTime
		maxViews sql.NullInt64
	)
	if err := row.Scan(
		&l.ID,
		&l.Token,
		&l.DocumentID,
		&l.CreatedDate,
		&expiry,
		&l.IsActive,
		&maxViews,
		&l.ViewCount,
		&l.IsPublic,
	); err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		l.ExpiryDate = &t
	}
	if maxViews.Valid {
		v := int(maxViews.Int64)
		l.MaxViews = &v
	}
	return &l, nil
}
