package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const reservationColumns = `r.id, r.area_id, r.user_id, r.user_name, r.user_role, r.user_email,
	r.starts_at, r.ends_at, r.cost, r.state, r.delivery_state, r.delivery_cost, r.delivery_paid,
	r.delivery_notes, r.delivered_by, r.delivered_at, r.created_at, r.updated_at`

// reservationRow scans state columns as plain strings before parsing them.
type reservationRow struct {
	r        domain.Reservation
	state    string
	delivery string
	areaName string
}

func (x *reservationRow) dest(withArea bool) []any {
	d := []any{
		&x.r.ID, &x.r.AreaID, &x.r.UserID, &x.r.UserName, &x.r.UserRole, &x.r.UserEmail,
		&x.r.Start, &x.r.End, &x.r.Cost, &x.state, &x.delivery, &x.r.DeliveryCost, &x.r.DeliveryPaid,
		&x.r.DeliveryNotes, &x.r.DeliveredBy, &x.r.DeliveredAt, &x.r.CreatedAt, &x.r.UpdatedAt,
	}
	if withArea {
		d = append(d, &x.areaName)
	}
	return d
}

func (x *reservationRow) build(withArea bool) (*domain.Reservation, error) {
	state, err := domain.ParseLifecycleState(x.state)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", x.r.ID, err)
	}
	delivery, err := domain.ParseDeliveryState(x.delivery)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", x.r.ID, err)
	}
	r := x.r
	r.State = state
	r.DeliveryState = delivery
	if withArea {
		r.Area = &domain.Area{ID: r.AreaID, Name: x.areaName}
	}
	return &r, nil
}

func scanReservation(row pgx.Row, withArea bool) (*domain.Reservation, error) {
	var x reservationRow
	if err := row.Scan(x.dest(withArea)...); err != nil {
		return nil, err
	}
	return x.build(withArea)
}

func (q *pgQueries) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	row := q.db.QueryRow(ctx, `WITH ins AS (
		INSERT INTO reservations (area_id, user_id, user_name, user_role, user_email, starts_at, ends_at, cost, state, delivery_state, delivery_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, area_id, created_at, updated_at
	)
	SELECT ins.id, ins.created_at, ins.updated_at, a.name FROM ins JOIN areas a ON a.id = ins.area_id`,
		r.AreaID, r.UserID, r.UserName, r.UserRole, r.UserEmail, r.Start, r.End, r.Cost,
		string(r.State), string(r.DeliveryState), r.DeliveryPaid)

	var areaName string
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &areaName); err != nil {
		return mapError("reservation", r.ID, err)
	}
	r.Area = &domain.Area{ID: r.AreaID, Name: areaName}
	return nil
}

func (q *pgQueries) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := q.db.QueryRow(ctx, `SELECT `+reservationColumns+`, a.name
		FROM reservations r JOIN areas a ON a.id = r.area_id WHERE r.id = $1`, id)
	r, err := scanReservation(row, true)
	if err != nil {
		return nil, mapError("reservation", id, err)
	}
	list := []domain.Reservation{*r}
	if err := q.loadChildren(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (q *pgQueries) LockReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := q.db.QueryRow(ctx, `SELECT `+reservationColumns+`, a.name
		FROM reservations r JOIN areas a ON a.id = r.area_id WHERE r.id = $1 FOR UPDATE OF r`, id)
	r, err := scanReservation(row, true)
	if err != nil {
		return nil, mapError("reservation", id, err)
	}
	return r, nil
}

func (q *pgQueries) ListReservations(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	rows, err := q.db.Query(ctx, `SELECT `+reservationColumns+`, a.name
		FROM reservations r JOIN areas a ON a.id = r.area_id
		WHERE ($1 = '' OR r.user_id = $1)
		  AND ($2::timestamptz IS NULL OR r.starts_at >= $2)
		  AND ($3::timestamptz IS NULL OR r.starts_at <= $3)
		ORDER BY r.starts_at, r.id`, f.UserID, f.StartFrom, f.StartTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows, true)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := q.loadChildren(ctx, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (q *pgQueries) UpdateReservation(ctx context.Context, r *domain.Reservation) error {
	row := q.db.QueryRow(ctx, `UPDATE reservations SET
		area_id = $2, user_name = $3, user_role = $4, user_email = $5, starts_at = $6, ends_at = $7, cost = $8,
		state = $9, delivery_state = $10, delivery_cost = $11, delivery_paid = $12, delivery_notes = $13,
		delivered_by = $14, delivered_at = $15, updated_at = now()
		WHERE id = $1 RETURNING updated_at`,
		r.ID, r.AreaID, r.UserName, r.UserRole, r.UserEmail, r.Start, r.End, r.Cost,
		string(r.State), string(r.DeliveryState), r.DeliveryCost, r.DeliveryPaid, r.DeliveryNotes,
		r.DeliveredBy, r.DeliveredAt)
	return mapError("reservation", r.ID, row.Scan(&r.UpdatedAt))
}

// DeleteReservation removes only the reservation row; existing children make
// it fail with a conflict.
func (q *pgQueries) DeleteReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM reservations AS r WHERE r.id = $1 RETURNING `+reservationColumns, id)
	r, err := scanReservation(row, false)
	if err != nil {
		return nil, mapError("reservation", id, err)
	}
	return r, nil
}

func (q *pgQueries) InsertConfirmation(ctx context.Context, c *domain.Confirmation) error {
	row := q.db.QueryRow(ctx, `INSERT INTO confirmations (reservation_id, code, verified)
		VALUES ($1, $2, $3) RETURNING id, created_at`, c.ReservationID, c.Code, c.Verified)
	return mapError("confirmation", c.ReservationID, row.Scan(&c.ID, &c.CreatedAt))
}

func (q *pgQueries) InsertReservationPayment(ctx context.Context, p *domain.ReservationPayment) error {
	row := q.db.QueryRow(ctx, `INSERT INTO reservation_payments (reservation_id, method, amount, state, reference)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		p.ReservationID, string(p.Method), p.Amount, string(p.State), p.Reference)
	return mapError("reservation_payment", p.ReservationID, row.Scan(&p.ID, &p.CreatedAt))
}

// loadChildren attaches confirmation, payments (with invoice) and damages
// payments to every reservation using one batch query per relation.
func (q *pgQueries) loadChildren(ctx context.Context, reservations []domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	ids := make([]int64, len(reservations))
	index := make(map[int64]int, len(reservations))
	for i := range reservations {
		ids[i] = reservations[i].ID
		index[reservations[i].ID] = i
	}

	confirmations, err := q.confirmationsFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range confirmations {
		c := confirmations[i]
		reservations[index[c.ReservationID]].Confirmation = &c
	}

	payments, err := q.paymentsFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range payments {
		i := index[p.ReservationID]
		reservations[i].Payments = append(reservations[i].Payments, p)
	}

	damages, err := q.damagesFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, d := range damages {
		i := index[d.ReservationID]
		reservations[i].DamagesPayments = append(reservations[i].DamagesPayments, d)
	}
	return nil
}

func (q *pgQueries) confirmationsFor(ctx context.Context, ids []int64) ([]domain.Confirmation, error) {
	rows, err := q.db.Query(ctx, `SELECT id, reservation_id, code, verified, created_at
		FROM confirmations WHERE reservation_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Confirmation
	for rows.Next() {
		var c domain.Confirmation
		if err := rows.Scan(&c.ID, &c.ReservationID, &c.Code, &c.Verified, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *pgQueries) paymentsFor(ctx context.Context, ids []int64) ([]domain.ReservationPayment, error) {
	rows, err := q.db.Query(ctx, `SELECT p.id, p.reservation_id, p.method, p.amount, p.state, p.reference, p.created_at,
			i.id, i.number, i.total, i.issued_at
		FROM reservation_payments p
		LEFT JOIN invoices i ON i.reservation_payment_id = p.id
		WHERE p.reservation_id = ANY($1)
		ORDER BY p.id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReservationPayment
	for rows.Next() {
		var (
			p             domain.ReservationPayment
			method, state string
			invoiceID     *int64
			number        *string
			total         *float64
			issuedAt      *time.Time
		)
		if err := rows.Scan(&p.ID, &p.ReservationID, &method, &p.Amount, &state, &p.Reference, &p.CreatedAt,
			&invoiceID, &number, &total, &issuedAt); err != nil {
			return nil, err
		}
		p.Method = domain.PaymentMethod(method)
		p.State = domain.PaymentState(state)
		if invoiceID != nil {
			inv := &domain.Invoice{ID: *invoiceID, PaymentID: p.ID}
			if number != nil {
				inv.Number = *number
			}
			if total != nil {
				inv.Total = *total
			}
			if issuedAt != nil {
				inv.IssuedAt = *issuedAt
			}
			p.Invoice = inv
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
