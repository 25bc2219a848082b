package repositories

import (
	"context"

	"storefinder/models"

	"github.com/stretchr/testify/mock"
)

// MockStoreRepository is a testify mock implementation of StoreRepository.
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, store *models.Store) (string, error) {
	args := m.Called(ctx, store)
	return args.String(0), args.Error(1)
}

func (m *MockStoreRepository) Update(ctx context.Context, id string, store *models.Store) (*models.Store, error) {
	args := m.Called(ctx, id, store)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) Page(ctx context.Context, skip, limit int64) ([]models.Store, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) CountSlugLike(ctx context.Context, base string) (int64, error) {
	args := m.Called(ctx, base)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ByTag(ctx context.Context, tag string) ([]models.Store, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) ByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TagCount), args.Error(1)
}

func (m *MockStoreRepository) Search(ctx context.Context, query string, limit int64) ([]models.Store, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) Near(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int64) ([]models.StoreSummary, error) {
	args := m.Called(ctx, lng, lat, maxDistanceMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoreSummary), args.Error(1)
}

func (m *MockStoreRepository) TopRated(ctx context.Context, minReviews, limit int) ([]models.RatedStore, error) {
	args := m.Called(ctx, minReviews, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatedStore), args.Error(1)
}

func (m *MockStoreRepository) AddReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
