package areas

import (
	"context"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"go.uber.org/zap"
)

type AreaUseCase interface {
	List(ctx context.Context) ([]domain.Area, error)
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
}

type Cache interface {
	GetAreas(ctx context.Context) ([]domain.Area, error)
	SetAreas(ctx context.Context, areas []domain.Area) error
}

type AreaService struct {
	repo   repository.AreaRepository
	cache  Cache
	logger *zap.Logger
}

func NewAreaService(repo repository.AreaRepository, cache Cache, logger *zap.Logger) *AreaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaService{repo: repo, cache: cache, logger: logger}
}

// List serves from the cache and falls back to the store on a miss or a
// cache error.
func (s *AreaService) List(ctx context.Context) ([]domain.Area, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAreas(ctx)
		if err != nil {
			s.logger.Warn("area cache read", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	areas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAreas(ctx, areas); err != nil {
			s.logger.Warn("area cache write", zap.Error(err))
		}
	}
	return areas, nil
}

func (s *AreaService) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	return s.repo.GetByID(ctx, id)
}

var _ AreaUseCase = (*AreaService)(nil)
