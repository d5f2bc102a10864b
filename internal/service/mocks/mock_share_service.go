package mocks

import (
	"context"
	"io"

	"infolock/internal/model"
	"infolock/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) Create(ctx context.Context, documentID string, isPublic bool, expiryDays, maxViews *int) (*service.ShareResponse, error) {
	args := m.Called(ctx, documentID, isPublic, expiryDays, maxViews)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareResponse), args.Error(1)
}

func (m *MockShareService) Resolve(ctx context.Context, tok string) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, tok)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var doc *model.Document
	if args.Get(1) != nil {
		doc = args.Get(1).(*model.Document)
	}
	return rc, doc, args.Error(2)
}

func (m *MockShareService) IsOwner(ctx context.Context, documentID, username string) (bool, error) {
	args := m.Called(ctx, documentID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockShareService) TogglePublic(ctx context.Context, documentID string, isPublic bool) error {
	args := m.Called(ctx, documentID, isPublic)
	return args.Error(0)
}

func (m *MockShareService) Deactivate(ctx context.Context, tok string) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

func (m *MockShareService) IsPublic(ctx context.Context, documentID string) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}
