package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spots-occitanie/internal/domain"
)

// MockSpotRepository is a mock of SpotRepository
type MockSpotRepository struct {
	mock.Mock
}

func (m *MockSpotRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSpotRepository) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Spot), args.Error(1)
}

func (m *MockSpotRepository) ListAll(ctx context.Context) ([]*domain.Spot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Spot), args.Error(1)
}

func (m *MockSpotRepository) ListMissingAddress(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Spot), args.Error(1)
}

func (m *MockSpotRepository) ListMissingElevation(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Spot), args.Error(1)
}

func (m *MockSpotRepository) ListMissingDepartment(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Spot), args.Error(1)
}

func (m *MockSpotRepository) UpdateAddress(ctx context.Context, id int64, addr *domain.Address) error {
	args := m.Called(ctx, id, addr)
	return args.Error(0)
}

func (m *MockSpotRepository) UpdateElevation(ctx context.Context, id int64, elevation float64) error {
	args := m.Called(ctx, id, elevation)
	return args.Error(0)
}

func (m *MockSpotRepository) UpdateDepartment(ctx context.Context, id int64, department string) error {
	args := m.Called(ctx, id, department)
	return args.Error(0)
}

func (m *MockSpotRepository) UpdateName(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockSpotRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSpotRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockTileRepository is a mock of TileRepository
type MockTileRepository struct {
	mock.Mock
}

func (m *MockTileRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTileRepository) HasTile(ctx context.Context, key domain.TileKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockTileRepository) GetTile(ctx context.Context, key domain.TileKey) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTileRepository) PutTile(ctx context.Context, key domain.TileKey, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockTileRepository) TileCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTileRepository) WriteMetadata(ctx context.Context, md *domain.TilesetMetadata) error {
	args := m.Called(ctx, md)
	return args.Error(0)
}

func (m *MockTileRepository) Metadata(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockTileRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTileSource is a mock of TileSource
type MockTileSource struct {
	mock.Mock
}

func (m *MockTileSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockGeocodeRepository is a mock of GeocodeRepository
type MockGeocodeRepository struct {
	mock.Mock
}

func (m *MockGeocodeRepository) Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

// MockElevationRepository is a mock of ElevationRepository
type MockElevationRepository struct {
	mock.Mock
}

func (m *MockElevationRepository) Elevations(ctx context.Context, points []domain.Point) ([]float64, error) {
	args := m.Called(ctx, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func ptrString(s string) *string    { return &s }
func ptrFloat64(f float64) *float64 { return &f }
