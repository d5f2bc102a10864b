package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"infolock/internal/config"
	"infolock/internal/model"
	"infolock/internal/repository"
	repoMocks "infolock/internal/repository/mocks"
	"infolock/internal/storage"
	storeMocks "infolock/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var shareCfg = config.ShareConfig{FrontendURL: "http://front.example"}

func newShareFixture() (*repoMocks.MockShareLinkRepository, *repoMocks.MockDocumentRepository, *repoMocks.MockUserRepository, *storeMocks.MockStorage, ShareService) {
	mLinks := new(repoMocks.MockShareLinkRepository)
	mDocs := new(repoMocks.MockDocumentRepository)
	mUsers := new(repoMocks.MockUserRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewShareService(mLinks, mDocs, mUsers, mStore, shareCfg)
	return mLinks, mDocs, mUsers, mStore, svc
}

func TestShareService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path private link", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(nil, sql.ErrNoRows)

		days := 7
		views := 3
		mLinks.On("Create", ctx, mock.MatchedBy(func(l *model.ShareLink) bool {
			return l.DocumentID == "doc-1" &&
				len(l.Token) == 32 &&
				l.IsActive &&
				!l.IsPublic &&
				l.ExpiryDate != nil &&
				l.MaxViews != nil && *l.MaxViews == 3 &&
				l.ViewCount == 0
		})).Return(func(ctx context.Context, l *model.ShareLink) *model.ShareLink { return l }, nil)

		res, err := svc.Create(ctx, "doc-1", false, &days, &views)
		require.NoError(t, err)
		assert.Len(t, res.ShareToken, 32)
		assert.Equal(t, "http://front.example/shared/"+res.ShareToken, res.ShareURL)
		assert.False(t, res.IsPublic)
		require.NotNil(t, res.ExpiryDate)
		assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), *res.ExpiryDate, time.Minute)
		mLinks.AssertExpectations(t)
	})

	t.Run("nil expiry and views mean unlimited", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(nil, sql.ErrNoRows)
		mLinks.On("Create", ctx, mock.MatchedBy(func(l *model.ShareLink) bool {
			return l.ExpiryDate == nil && l.MaxViews == nil
		})).Return(func(ctx context.Context, l *model.ShareLink) *model.ShareLink { return l }, nil)

		res, err := svc.Create(ctx, "doc-1", false, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, res.ExpiryDate)
		assert.Nil(t, res.MaxViews)
	})

	t.Run("public request reuses existing public link", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		existing := &model.ShareLink{ID: "link-1", Token: "existing-token", DocumentID: "doc-1", IsPublic: true}
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(existing, nil)

		res, err := svc.Create(ctx, "doc-1", true, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "existing-token", res.ShareToken)
		mLinks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("private request ignores existing public link", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		existing := &model.ShareLink{ID: "link-1", Token: "existing-token", IsPublic: true}
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(existing, nil)
		mLinks.On("Create", ctx, mock.Anything).
			Return(func(ctx context.Context, l *model.ShareLink) *model.ShareLink { return l }, nil)

		res, err := svc.Create(ctx, "doc-1", false, nil, nil)
		require.NoError(t, err)
		assert.NotEqual(t, "existing-token", res.ShareToken)
	})

	t.Run("document missing", func(t *testing.T) {
		_, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		res, err := svc.Create(ctx, "missing", false, nil, nil)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.Nil(t, res)
	})

	t.Run("lost public-link race falls back to the winner", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		winner := &model.ShareLink{ID: "link-2", Token: "winner-token", IsPublic: true}
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(nil, sql.ErrNoRows).Once()
		mLinks.On("Create", ctx, mock.Anything).Return(nil, repository.ErrPublicLinkExists)
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(winner, nil).Once()

		res, err := svc.Create(ctx, "doc-1", true, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "winner-token", res.ShareToken)
	})
}

func TestShareService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mLinks, mDocs, _, mStore, svc := newShareFixture()
		mLinks.On("ConsumeView", ctx, "tok-1", mock.AnythingOfType("time.Time")).Return("doc-1", nil)
		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", FileName: "a.pdf", StoragePath: "documents/a.pdf"}, nil)
		mStore.On("Get", ctx, "documents/a.pdf").
			Return(io.NopCloser(strings.NewReader("content")), storage.ObjectInfo{}, nil)

		rc, doc, err := svc.Resolve(ctx, "tok-1")
		require.NoError(t, err)
		require.NotNil(t, rc)
		defer rc.Close()
		assert.Equal(t, "a.pdf", doc.FileName)
	})

	t.Run("unusable token", func(t *testing.T) {
		mLinks, _, _, _, svc := newShareFixture()
		mLinks.On("ConsumeView", ctx, "dead-token", mock.AnythingOfType("time.Time")).
			Return("", sql.ErrNoRows)

		rc, doc, err := svc.Resolve(ctx, "dead-token")
		assert.ErrorIs(t, err, ErrLinkNotFound)
		assert.Nil(t, rc)
		assert.Nil(t, doc)
	})

	t.Run("link outlived its document", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mLinks.On("ConsumeView", ctx, "tok-1", mock.AnythingOfType("time.Time")).Return("doc-gone", nil)
		mDocs.On("FindByID", ctx, "doc-gone").Return(nil, sql.ErrNoRows)

		_, _, err := svc.Resolve(ctx, "tok-1")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("storage error", func(t *testing.T) {
		mLinks, mDocs, _, mStore, svc := newShareFixture()
		mLinks.On("ConsumeView", ctx, "tok-1", mock.AnythingOfType("time.Time")).Return("doc-1", nil)
		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", StoragePath: "documents/a.pdf"}, nil)
		mStore.On("Get", ctx, "documents/a.pdf").
			Return(nil, storage.ObjectInfo{}, errors.New("storage fail"))

		_, _, err := svc.Resolve(ctx, "tok-1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "fetch content")
	})
}

func TestShareService_IsOwner(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository)
		want       bool
		wantErr    bool
	}{
		{
			name: "owner matches",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", OwnerID: "user-1"}, nil)
				mUsers.On("FindByID", ctx, "user-1").Return(&model.User{ID: "user-1", Username: "alice"}, nil)
			},
			want: true,
		},
		{
			name: "different owner",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", OwnerID: "user-2"}, nil)
				mUsers.On("FindByID", ctx, "user-2").Return(&model.User{ID: "user-2", Username: "bob"}, nil)
			},
			want: false,
		},
		{
			name: "missing document is false not error",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("FindByID", ctx, "doc-1").Return(nil, sql.ErrNoRows)
			},
			want: false,
		},
		{
			name: "repository error",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("FindByID", ctx, "doc-1").Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mDocs, mUsers, _, svc := newShareFixture()
			tt.setupMocks(mDocs, mUsers)

			got, err := svc.IsOwner(ctx, "doc-1", "alice")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestShareService_TogglePublic(t *testing.T) {
	ctx := context.Background()

	t.Run("flips existing link in place", func(t *testing.T) {
		mLinks, _, _, _, svc := newShareFixture()
		existing := &model.ShareLink{ID: "link-1", IsPublic: true}
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(existing, nil)
		mLinks.On("SetPublic", ctx, "link-1", false).Return(nil)

		assert.NoError(t, svc.TogglePublic(ctx, "doc-1", false))
		mLinks.AssertExpectations(t)
	})

	t.Run("turning off with no link is a no-op", func(t *testing.T) {
		mLinks, _, _, _, svc := newShareFixture()
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(nil, sql.ErrNoRows)

		assert.NoError(t, svc.TogglePublic(ctx, "doc-1", false))
		mLinks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("turning on with no link creates one under the default policy", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mLinks.On("FindPublicByDocument", ctx, "doc-1").Return(nil, sql.ErrNoRows)
		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mLinks.On("Create", ctx, mock.MatchedBy(func(l *model.ShareLink) bool {
			return l.IsPublic &&
				l.ExpiryDate != nil &&
				l.MaxViews != nil && *l.MaxViews == 100
		})).Return(func(ctx context.Context, l *model.ShareLink) *model.ShareLink { return l }, nil)

		assert.NoError(t, svc.TogglePublic(ctx, "doc-1", true))
		mLinks.AssertExpectations(t)
	})

	t.Run("turning on a missing document", func(t *testing.T) {
		mLinks, mDocs, _, _, svc := newShareFixture()
		mLinks.On("FindPublicByDocument", ctx, "missing").Return(nil, sql.ErrNoRows)
		mDocs.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.TogglePublic(ctx, "missing", true), ErrDocumentNotFound)
	})
}

func TestShareService_Deactivate(t *testing.T) {
	ctx := context.Background()

	mLinks, _, _, _, svc := newShareFixture()
	mLinks.On("Deactivate", ctx, "tok-1").Return(nil)

	assert.NoError(t, svc.Deactivate(ctx, "tok-1"))
	mLinks.AssertExpectations(t)
}

func TestShareService_IsPublic(t *testing.T) {
	ctx := context.Background()

	mLinks, _, _, _, svc := newShareFixture()
	mLinks.On("ExistsPublicByDocument", ctx, "doc-1").Return(true, nil)

	got, err := svc.IsPublic(ctx, "doc-1")
	assert.NoError(t, err)
	assert.True(t, got)
}

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := generateToken()
		require.NoError(t, err)
		assert.Len(t, tok, 32)
		assert.Equal(t, strings.ToLower(tok), tok)
		assert.False(t, seen[tok], "token collision")
		seen[tok] = true
	}
}
