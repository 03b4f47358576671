package areas

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAreaRepository struct {
	mock.Mock
}

func (m *MockAreaRepository) List(ctx context.Context) ([]domain.Area, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Area), args.Error(1)
}

func (m *MockAreaRepository) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Area), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAreas(ctx context.Context) ([]domain.Area, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Area), args.Error(1)
}

func (m *MockCache) SetAreas(ctx context.Context, areas []domain.Area) error {
	args := m.Called(ctx, areas)
	return args.Error(0)
}

func sampleAreas() []domain.Area {
	return []domain.Area{
		{ID: 1, Name: "Churrasquera", Capacity: 15, HourlyCost: 20},
		{ID: 5, Name: "Salón de eventos", Capacity: 80, HourlyCost: 50},
	}
}

func TestAreaService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := NewAreaService(mockRepo, mockCache, nil)
	ctx := context.Background()
	areas := sampleAreas()

	mockCache.On("GetAreas", ctx).Return(([]domain.Area)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(areas, nil).Once()
	mockCache.On("SetAreas", ctx, areas).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, areas, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestAreaService_List_CacheHit(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := NewAreaService(mockRepo, mockCache, nil)
	ctx := context.Background()
	areas := sampleAreas()

	mockCache.On("GetAreas", ctx).Return(areas, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, areas, result)
	mockRepo.AssertNotCalled(t, "List")
	mockCache.AssertNotCalled(t, "SetAreas")
}

func TestAreaService_List_CacheError(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := NewAreaService(mockRepo, mockCache, nil)
	ctx := context.Background()
	areas := sampleAreas()

	mockCache.On("GetAreas", ctx).Return(([]domain.Area)(nil), errors.New("cache error")).Once()
	mockRepo.On("List", ctx).Return(areas, nil).Once()
	mockCache.On("SetAreas", ctx, areas).Return(errors.New("cache error")).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, areas, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestAreaService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := NewAreaService(mockRepo, mockCache, nil)
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockCache.On("GetAreas", ctx).Return(([]domain.Area)(nil), nil).Once()
	mockRepo.On("List", ctx).Return([]domain.Area{}, expectedErr).Once()

	result, err := service.List(ctx)

	assert.Nil(t, result)
	assert.Equal(t, expectedErr, err)
	mockCache.AssertNotCalled(t, "SetAreas")
}

func TestAreaService_GetByID(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	service := NewAreaService(mockRepo, nil, nil)
	ctx := context.Background()
	area := &sampleAreas()[0]

	mockRepo.On("GetByID", ctx, int64(1)).Return(area, nil).Once()
	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, domain.NotFound("area", 99)).Once()

	result, err := service.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, area, result)

	result, err = service.GetByID(ctx, 99)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAreaService_NoCache(t *testing.T) {
	mockRepo := &MockAreaRepository{}
	service := NewAreaService(mockRepo, nil, nil)
	ctx := context.Background()
	areas := sampleAreas()

	mockRepo.On("List", ctx).Return(areas, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, areas, result)
	mockRepo.AssertExpectations(t)
}
