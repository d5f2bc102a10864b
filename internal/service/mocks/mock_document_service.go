package mocks

import (
	"context"
	"io"

	"infolock/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, r io.Reader, size int64, contentType, category, filename, ownerID string) (*service.DocumentView, error) {
	args := m.Called(ctx, r, size, contentType, category, filename, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string) ([]service.DocumentView, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) ListByCategory(ctx context.Context, ownerID, category string) ([]service.DocumentView, error) {
	args := m.Called(ctx, ownerID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, ownerID string) (*service.DocumentView, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id, ownerID string) (io.ReadCloser, *service.DocumentView, error) {
	args := m.Called(ctx, id, ownerID)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var view *service.DocumentView
	if args.Get(1) != nil {
		view = args.Get(1).(*service.DocumentView)
	}
	return rc, view, args.Error(2)
}

func (m *MockDocumentService) Update(ctx context.Context, in service.UpdateInput) (*service.DocumentView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentView), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}
