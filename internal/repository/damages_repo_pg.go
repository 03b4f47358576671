package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const damagesColumns = `d.id, d.reservation_id, d.amount, d.description, d.registered_by, d.updated_by,
	d.state, d.stripe_session_id, d.stripe_payment_id, d.paid_at, d.registered_at, d.updated_at`

type damagesRow struct {
	p     domain.DamagesPayment
	state string
}

func (x *damagesRow) dest() []any {
	return []any{
		&x.p.ID, &x.p.ReservationID, &x.p.Amount, &x.p.Description, &x.p.RegisteredBy, &x.p.UpdatedBy,
		&x.state, &x.p.StripeSessionID, &x.p.StripePaymentID, &x.p.PaidAt, &x.p.RegisteredAt, &x.p.UpdatedAt,
	}
}

func (x *damagesRow) build() (*domain.DamagesPayment, error) {
	state, err := domain.ParseDamagesState(x.state)
	if err != nil {
		return nil, fmt.Errorf("damages payment %d: %w", x.p.ID, err)
	}
	p := x.p
	p.State = state
	return &p, nil
}

// scanDamagesWithReservation reads a damages row joined with its
// reservation and area.
func scanDamagesWithReservation(row pgx.Row) (*domain.DamagesPayment, error) {
	var (
		d damagesRow
		r reservationRow
	)
	if err := row.Scan(append(d.dest(), r.dest(true)...)...); err != nil {
		return nil, err
	}
	p, err := d.build()
	if err != nil {
		return nil, err
	}
	res, err := r.build(true)
	if err != nil {
		return nil, err
	}
	p.Reservation = res
	return p, nil
}

const damagesWithReservation = `SELECT ` + damagesColumns + `, ` + reservationColumns + `, a.name
	FROM damages_payments d
	JOIN reservations r ON r.id = d.reservation_id
	JOIN areas a ON a.id = r.area_id`

func (q *pgQueries) InsertDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error {
	row := q.db.QueryRow(ctx, `INSERT INTO damages_payments
		(reservation_id, amount, description, registered_by, state, paid_at, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, updated_at`,
		p.ReservationID, p.Amount, p.Description, p.RegisteredBy, string(p.State), p.PaidAt, p.RegisteredAt)
	return mapError("reservation", p.ReservationID, row.Scan(&p.ID, &p.UpdatedAt))
}

func (q *pgQueries) GetDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error) {
	p, err := scanDamagesWithReservation(q.db.QueryRow(ctx, damagesWithReservation+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, mapError("damages_payment", id, err)
	}
	return p, nil
}

func (q *pgQueries) LockDamagesPayment(ctx context.Context, id int64) (*domain.DamagesPayment, error) {
	var x damagesRow
	row := q.db.QueryRow(ctx, `SELECT `+damagesColumns+` FROM damages_payments d WHERE d.id = $1 FOR UPDATE`, id)
	if err := row.Scan(x.dest()...); err != nil {
		return nil, mapError("damages_payment", id, err)
	}
	return x.build()
}

func (q *pgQueries) UpdateDamagesPayment(ctx context.Context, p *domain.DamagesPayment) error {
	row := q.db.QueryRow(ctx, `UPDATE damages_payments SET
		description = $2, updated_by = $3, state = $4, stripe_session_id = $5, stripe_payment_id = $6,
		paid_at = $7, updated_at = now()
		WHERE id = $1 RETURNING updated_at`,
		p.ID, p.Description, p.UpdatedBy, string(p.State), p.StripeSessionID, p.StripePaymentID, p.PaidAt)
	return mapError("damages_payment", p.ID, row.Scan(&p.UpdatedAt))
}

// ListDamagesPayments returns newest registrations first.
func (q *pgQueries) ListDamagesPayments(ctx context.Context, f DamagesFilter) ([]domain.DamagesPayment, error) {
	rows, err := q.db.Query(ctx, damagesWithReservation+`
		WHERE ($1::bigint = 0 OR d.reservation_id = $1)
		  AND ($2 = '' OR d.state = $2)
		ORDER BY d.registered_at DESC, d.id DESC`, f.ReservationID, string(f.State))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.DamagesPayment, 0)
	for rows.Next() {
		p, err := scanDamagesWithReservation(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (q *pgQueries) DamagesForReservation(ctx context.Context, reservationID int64) ([]domain.DamagesPayment, error) {
	return q.damagesFor(ctx, []int64{reservationID})
}

func (q *pgQueries) damagesFor(ctx context.Context, ids []int64) ([]domain.DamagesPayment, error) {
	rows, err := q.db.Query(ctx, `SELECT `+damagesColumns+` FROM damages_payments d
		WHERE d.reservation_id = ANY($1) ORDER BY d.registered_at DESC, d.id DESC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DamagesPayment
	for rows.Next() {
		var x damagesRow
		if err := rows.Scan(x.dest()...); err != nil {
			return nil, err
		}
		p, err := x.build()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
