package repository

import (
	"context"

	"github.com/Domenick1991/amenitybooking/internal/domain"
)

type AreaRepository interface {
	List(ctx context.Context) ([]domain.Area, error)
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
}

type PGAreaRepository struct {
	db DBTX
}

func NewAreaRepository(db DBTX) AreaRepository {
	return &PGAreaRepository{db: db}
}

func (r *PGAreaRepository) List(ctx context.Context) ([]domain.Area, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, capacity, hourly_cost FROM areas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]domain.Area, 0)
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Capacity, &a.HourlyCost); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (r *PGAreaRepository) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, description, capacity, hourly_cost FROM areas WHERE id=$1`, id)
	var a domain.Area
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Capacity, &a.HourlyCost); err != nil {
		return nil, mapError("area", id, err)
	}
	return &a, nil
}

var _ AreaRepository = (*PGAreaRepository)(nil)
