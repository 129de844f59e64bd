package mocks

import (
	"context"

	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockCatalogService[T repository.Entity] struct {
	mock.Mock
}

func (m *MockCatalogService[T]) List(ctx context.Context, q service.ListQuery) (*service.Page[T], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[T]), args.Error(1)
}

func (m *MockCatalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	args := m.Called(ctx, id, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) Lend(ctx context.Context, bookID int64, req service.LendRequest) (*model.BookLending, error) {
	args := m.Called(ctx, bookID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookLending), args.Error(1)
}

func (m *MockLendingService) Return(ctx context.Context, lendingID int64) (*model.BookLending, error) {
	args := m.Called(ctx, lendingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookLending), args.Error(1)
}
