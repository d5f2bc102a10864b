package mocks

import (
	"context"
	"time"

	"infolock/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockShareLinkRepository struct {
	mock.Mock
}

func (m *MockShareLinkRepository) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	args := m.Called(ctx, link)
	if f, ok := args.Get(0).(func(context.Context, *model.ShareLink) *model.ShareLink); ok {
		return f(ctx, link), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkRepository) FindPublicByDocument(ctx context.Context, documentID string) (*model.ShareLink, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkRepository) ExistsPublicByDocument(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShareLinkRepository) SetPublic(ctx context.Context, id string, isPublic bool) error {
	args := m.Called(ctx, id, isPublic)
	return args.Error(0)
}

func (m *MockShareLinkRepository) Deactivate(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockShareLinkRepository) ConsumeView(ctx context.Context, token string, now time.Time) (string, error) {
	args := m.Called(ctx, token, now)
	return args.String(0), args.Error(1)
}
