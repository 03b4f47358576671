package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/amenitybooking/internal/domain"
)

type DeleteStep struct {
	Table string
	SQL   string
}

// OrderedDelete runs its steps in declaration order; children come before
// the rows they reference.
type OrderedDelete []DeleteStep

// CascadeReport counts the rows removed per table.
type CascadeReport map[string]int64

func (o OrderedDelete) Run(ctx context.Context, db DBTX, args ...any) (CascadeReport, error) {
	report := make(CascadeReport, len(o))
	for _, step := range o {
		tag, err := db.Exec(ctx, step.SQL, args...)
		if err != nil {
			return report, fmt.Errorf("delete %s: %w", step.Table, err)
		}
		report[step.Table] = tag.RowsAffected()
	}
	return report, nil
}

var reservationCascade = OrderedDelete{
	{Table: "invoices", SQL: `DELETE FROM invoices WHERE reservation_payment_id IN
		(SELECT id FROM reservation_payments WHERE reservation_id = $1)`},
	{Table: "reservation_payments", SQL: `DELETE FROM reservation_payments WHERE reservation_id = $1`},
	{Table: "damages_payments", SQL: `DELETE FROM damages_payments WHERE reservation_id = $1`},
	{Table: "confirmations", SQL: `DELETE FROM confirmations WHERE reservation_id = $1`},
}

// DeleteReservationCascade on the store opens its own transaction; the
// tx-bound Queries from InTx run the steps in the caller's transaction.
func (s *PGStore) DeleteReservationCascade(ctx context.Context, id int64) (*domain.Reservation, CascadeReport, error) {
	var (
		removed *domain.Reservation
		report  CascadeReport
	)
	err := s.InTx(ctx, func(q Queries) error {
		var err error
		removed, report, err = q.DeleteReservationCascade(ctx, id)
		return err
	})
	if err != nil {
		return nil, report, err
	}
	return removed, report, nil
}

func (q *pgQueries) DeleteReservationCascade(ctx context.Context, id int64) (*domain.Reservation, CascadeReport, error) {
	report, err := reservationCascade.Run(ctx, q.db, id)
	if err != nil {
		return nil, report, err
	}
	r, err := q.DeleteReservation(ctx, id)
	if err != nil {
		return nil, report, err
	}
	report["reservations"] = 1
	return r, report, nil
}
