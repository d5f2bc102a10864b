package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"infolock/internal/model"
	"infolock/internal/repository"
	repoMocks "infolock/internal/repository/mocks"
	"infolock/internal/storage"
	storeMocks "infolock/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeShareLinkRepo keeps links in memory and applies the same usability
// predicate the ConsumeView SQL statement encodes: active, unexpired at now,
// and under the view limit, with check and increment under one lock.
type fakeShareLinkRepo struct {
	mu    sync.Mutex
	links map[string]*model.ShareLink
}

var _ repository.ShareLinkRepository = (*fakeShareLinkRepo)(nil)

func newFakeShareLinkRepo(links ...*model.ShareLink) *fakeShareLinkRepo {
	r := &fakeShareLinkRepo{links: make(map[string]*model.ShareLink)}
	for _, l := range links {
		r.links[l.Token] = l
	}
	return r
}

func (r *fakeShareLinkRepo) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.Token] = link
	return link, nil
}

func (r *fakeShareLinkRepo) FindPublicByDocument(ctx context.Context, documentID string) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.DocumentID == documentID && l.IsPublic {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeShareLinkRepo) ExistsPublicByDocument(ctx context.Context, documentID string) (bool, error) {
	_, err := r.FindPublicByDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeShareLinkRepo) SetPublic(ctx context.Context, id string, isPublic bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.ID == id {
			l.IsPublic = isPublic
		}
	}
	return nil
}

func (r *fakeShareLinkRepo) Deactivate(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.links[token]; ok {
		l.IsActive = false
	}
	return nil
}

func (r *fakeShareLinkRepo) ConsumeView(ctx context.Context, token string, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[token]
	if !ok || !l.IsActive {
		return "", sql.ErrNoRows
	}
	if l.ExpiryDate != nil && !now.Before(*l.ExpiryDate) {
		return "", sql.ErrNoRows
	}
	if l.MaxViews != nil && l.ViewCount >= *l.MaxViews {
		return "", sql.ErrNoRows
	}
	l.ViewCount++
	return l.DocumentID, nil
}

func (r *fakeShareLinkRepo) viewCount(token string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[token].ViewCount
}

// newGatingFixture wires a ShareService over the in-memory link repo, with
// document lookup and storage answered for doc-1.
func newGatingFixture(t *testing.T, links ...*model.ShareLink) (*fakeShareLinkRepo, ShareService) {
	t.Helper()

	repo := newFakeShareLinkRepo(links...)

	mDocs := new(repoMocks.MockDocumentRepository)
	mDocs.On("FindByID", mock.Anything, "doc-1").
		Return(&model.Document{ID: "doc-1", FileName: "a.pdf", StoragePath: "documents/a"}, nil)

	mStore := new(storeMocks.MockStorage)
	mStore.On("Get", mock.Anything, "documents/a").
		Return(func(ctx context.Context, key string) io.ReadCloser {
			return io.NopCloser(strings.NewReader("content"))
		}, storage.ObjectInfo{}, nil)

	svc := NewShareService(repo, mDocs, new(repoMocks.MockUserRepository), mStore, shareCfg)
	return repo, svc
}

func TestShareService_Resolve_ViewLimitGating(t *testing.T) {
	ctx := context.Background()
	views := 2
	repo, svc := newGatingFixture(t, &model.ShareLink{
		ID: "link-1", Token: "tok-limited", DocumentID: "doc-1",
		IsActive: true, MaxViews: &views,
	})

	for i := 0; i < views; i++ {
		rc, doc, err := svc.Resolve(ctx, "tok-limited")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		rc.Close()
	}

	_, _, err := svc.Resolve(ctx, "tok-limited")
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.Equal(t, 2, repo.viewCount("tok-limited"))
}

func TestShareService_Resolve_ExpiryGating(t *testing.T) {
	ctx := context.Background()

	t.Run("expired link is unusable and uncounted", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		repo, svc := newGatingFixture(t, &model.ShareLink{
			ID: "link-1", Token: "tok-expired", DocumentID: "doc-1",
			IsActive: true, ExpiryDate: &past,
		})

		_, _, err := svc.Resolve(ctx, "tok-expired")
		assert.ErrorIs(t, err, ErrLinkNotFound)
		assert.Equal(t, 0, repo.viewCount("tok-expired"))
	})

	t.Run("future expiry resolves", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		repo, svc := newGatingFixture(t, &model.ShareLink{
			ID: "link-1", Token: "tok-live", DocumentID: "doc-1",
			IsActive: true, ExpiryDate: &future,
		})

		rc, _, err := svc.Resolve(ctx, "tok-live")
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, 1, repo.viewCount("tok-live"))
	})
}

func TestShareService_Resolve_AfterDeactivate(t *testing.T) {
	ctx := context.Background()
	repo, svc := newGatingFixture(t, &model.ShareLink{
		ID: "link-1", Token: "tok-1", DocumentID: "doc-1", IsActive: true,
	})

	rc, _, err := svc.Resolve(ctx, "tok-1")
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, svc.Deactivate(ctx, "tok-1"))

	_, _, err = svc.Resolve(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.Equal(t, 1, repo.viewCount("tok-1"))
}

func TestShareService_Resolve_ConcurrentViewLimit(t *testing.T) {
	ctx := context.Background()
	views := 5
	repo, svc := newGatingFixture(t, &model.ShareLink{
		ID: "link-1", Token: "tok-race", DocumentID: "doc-1",
		IsActive: true, MaxViews: &views,
	})

	const callers = 20
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc, _, err := svc.Resolve(ctx, "tok-race")
			if err == nil {
				rc.Close()
			}
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrLinkNotFound)
		}
	}
	assert.Equal(t, views, successes)
	assert.Equal(t, views, repo.viewCount("tok-race"))
}
