// Package repomock provides a testify mock of repository.Store.
package repomock

import (
	"context"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Store runs InTx callbacks against itself, so expectations set on the
// mock apply both inside and outside transactions. A failing callback is
// returned unchanged, and TxCount counts the callbacks that succeeded.
type Store struct {
	mock.Mock
	TxCount int
}

func (m *Store) InTx(ctx context.Context, fn func(q repository.Queries) error) error {
	if err := fn(m); err != nil {
		return err
	}
	m.TxCount++
	return nil
}

func reservation(args mock.Arguments) (*domain.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func damages(args mock.Arguments) (*domain.DamagesPayment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamagesPayment), args.Error(1)
}

func (m *Store) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *Store) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	return reservation(m.Called(ctx, id))
}

func (m *Store) LockReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	return reservation(m.Called(ctx, id))
}

func (m *Store) ListReservations(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *Store) UpdateReservation(ctx context.Context, r *domain.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *Store) DeleteReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	return reservation(m.Called(ctx, id))
}

func (m *Store) DeleteReservationCascade(ctx context.Context, id int64) (*domain.Reservation, repository.CascadeReport, error) {
	args := m.Called(ctx, id)
	var report repository.CascadeReport
	if v := args.Get(1); v != nil {
		report = v.(repository.CascadeReport)
	}
	if args.Get(0) == nil {
		return nil, report, args.Error(2)
	}
	return args.Get(0).(*domain.Reservation), report, args.Error(2)
}

func (m *Store) InsertConfirmation(ctx context.Context, c *domain.Confirmation) error {
	return m.Called(ctx, c).Error(0)
}

func (m *Store) InsertReservationPayment(ctx context.Context, p *domain.ReservationPayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *Store) InsertDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *Store) GetDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error) {
	return damages(m.Called(ctx, id))
}

func (m *Store) LockDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error) {
	return damages(m.Called(ctx, id))
}

func (m *Store) UpdateDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *Store) ListDamagesPayments(ctx context.Context, f repository.DamagesFilter) ([]domain.DamagesPayment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DamagesPayment), args.Error(1)
}

func (m *Store) DamagesForReservation(ctx context.Context, reservationID int64) ([]domain.DamagesPayment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DamagesPayment), args.Error(1)
}

var _ repository.Store = (*Store)(nil)
