package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX is the subset of pgx shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ReservationFilter struct {
	UserID    string
	StartFrom *time.Time
	StartTo   *time.Time
}

type DamagesFilter struct {
	ReservationID int64
	State         domain.DamagesState
}

// Queries are the entity operations, bound either to the pool or to a tx.
type Queries interface {
	InsertReservation(ctx context.Context, r *domain.Reservation) error
	GetReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	LockReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error)
	UpdateReservation(ctx context.Context, r *domain.Reservation) error
	DeleteReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	DeleteReservationCascade(ctx context.Context, id int64) (*domain.Reservation, CascadeReport, error)

	InsertConfirmation(ctx context.Context, c *domain.Confirmation) error
	InsertReservationPayment(ctx context.Context, p *domain.ReservationPayment) error

	InsertDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error
	GetDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error)
	LockDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error)
	UpdateDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error
	ListDamagesPayments(ctx context.Context, f DamagesFilter) ([]domain.DamagesPayment, error)
	DamagesForReservation(ctx context.Context, reservationID int64) ([]domain.DamagesPayment, error)
}

// Store runs Queries directly or inside one atomic transaction.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

type PGStore struct {
	*pgQueries
	db     DB
	logger *zap.Logger
}

func NewStore(db DB, logger *zap.Logger) *PGStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGStore{pgQueries: &pgQueries{db: db}, db: db, logger: logger}
}

// InTx commits when fn returns nil and rolls back otherwise. Errors that are
// not domain errors surface as transaction errors.
func (s *PGStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Transaction("begin", err)
	}

	if err := fn(&pgQueries{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("rollback failed", zap.Error(rbErr))
		}
		if domain.IsKind(err) {
			return err
		}
		return domain.Transaction("tx", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Transaction("commit", err)
	}
	return nil
}

type pgQueries struct {
	db DBTX
}

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func mapError(entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return domain.Conflict(entity, "referenced rows prevent this change", err)
		case pgUniqueViolation:
			return domain.Conflict(entity, "duplicate value", err)
		case pgCheckViolation:
			return domain.Validation(entity, pgErr.Message)
		}
	}
	return err
}

var (
	_ Store   = (*PGStore)(nil)
	_ Queries = (*pgQueries)(nil)
)
