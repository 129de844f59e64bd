package mocks

import (
	"context"

	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/specification"

	"github.com/stretchr/testify/mock"
)

type MockRepository[T repository.Entity] struct {
	mock.Mock
}

func (m *MockRepository[T]) FirstOrDefault(ctx context.Context, spec specification.Specification[T]) (*T, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Get(ctx context.Context, spec specification.Specification[T]) ([]T, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context, spec specification.Specification[T]) (int, error) {
	args := m.Called(ctx, spec)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository[T]) Add(ctx context.Context, item *T) (*T, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Update(ctx context.Context, item *T) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository[T]) Delete(ctx context.Context, item *T) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockUnitOfWork hands out the embedded repository mocks and records
// SaveChanges calls.
type MockUnitOfWork struct {
	mock.Mock
	AuthorRepo  MockRepository[model.Author]
	GenreRepo   MockRepository[model.Genre]
	BookRepo    MockRepository[model.Book]
	LendingRepo MockRepository[model.BookLending]
}

func (m *MockUnitOfWork) Authors() repository.Repository[model.Author]       { return &m.AuthorRepo }
func (m *MockUnitOfWork) Genres() repository.Repository[model.Genre]         { return &m.GenreRepo }
func (m *MockUnitOfWork) Books() repository.Repository[model.Book]           { return &m.BookRepo }
func (m *MockUnitOfWork) Lendings() repository.Repository[model.BookLending] { return &m.LendingRepo }

func (m *MockUnitOfWork) SaveChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Factory returns a repository.Factory that always yields m.
func (m *MockUnitOfWork) Factory() repository.Factory {
	return func() repository.UnitOfWork { return m }
}

// AssertAll checks the expectations of m and every repository mock.
func (m *MockUnitOfWork) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.AuthorRepo.AssertExpectations(t)
	m.GenreRepo.AssertExpectations(t)
	m.BookRepo.AssertExpectations(t)
	m.LendingRepo.AssertExpectations(t)
}
