package domain

import (
	"strings"
	"time"
)

type DamagesPayment struct {
	ID              int64        `json:"id"`
	ReservationID   int64        `json:"reservaId"`
	Amount          float64      `json:"montoDanos"`
	Description     string       `json:"descripcionDanos"`
	RegisteredBy    string       `json:"usuarioRegistra"`
	UpdatedBy       *string      `json:"usuarioActualiza,omitempty"`
	State           DamagesState `json:"estadoPago"`
	StripeSessionID *string      `json:"stripeSessionId,omitempty"`
	StripePaymentID *string      `json:"stripePaymentId,omitempty"`
	PaidAt          *time.Time   `json:"fechaPago"`
	RegisteredAt    time.Time    `json:"fechaRegistro"`
	UpdatedAt       time.Time    `json:"updatedAt"`

	Reservation *Reservation `json:"reserva,omitempty"`
}

// NewDamagesPayment builds a charge. A zero amount is an auditable
// "no damages" record and is born paid.
func NewDamagesPayment(reservationID int64, amount float64, description, registeredBy string, now time.Time) (*DamagesPayment, error) {
	if reservationID <= 0 {
		return nil, Validation("pagoDanos", "reservaId es requerido")
	}
	if amount < 0 {
		return nil, Validation("pagoDanos", "montoDanos must not be negative")
	}
	if strings.TrimSpace(description) == "" {
		return nil, Validation("pagoDanos", "descripcionDanos es requerida")
	}
	p := &DamagesPayment{
		ReservationID: reservationID,
		Amount:        amount,
		Description:   description,
		RegisteredBy:  registeredBy,
		State:         DamagesPending,
		RegisteredAt:  now,
	}
	if amount == 0 {
		at := now
		p.State = DamagesPaid
		p.PaidAt = &at
	}
	return p, nil
}

// Outstanding is true for an unresolved positive charge.
func (p *DamagesPayment) Outstanding() bool {
	return p.State == DamagesPending && p.Amount > 0
}

// HasOutstandingDamages ignores the charge with id skip (0 skips nothing).
func HasOutstandingDamages(list []DamagesPayment, skip int64) bool {
	for i := range list {
		if list[i].ID != 0 && list[i].ID == skip {
			continue
		}
		if list[i].Outstanding() {
			return true
		}
	}
	return false
}

type DamagesPatch struct {
	State           *DamagesState
	StripeSessionID *string
	StripePaymentID *string
	PaidAt          *time.Time
	Description     *string
}

// Settle marks the charge paid. It reports false when the same session
// already settled it; any other paid charge is a conflict.
func (p *DamagesPayment) Settle(sessionID, paymentID, actorName string, at time.Time) (bool, error) {
	if p.State == DamagesPaid {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID {
			return false, nil
		}
		return false, Conflict("pagoDanos", "el pago de daños ya fue pagado", nil)
	}
	paid := DamagesPaid
	err := p.Apply(DamagesPatch{
		State:           &paid,
		StripeSessionID: &sessionID,
		StripePaymentID: &paymentID,
		PaidAt:          &at,
	}, actorName)
	return err == nil, err
}

// Apply patches the charge and stamps the updating actor.
func (p *DamagesPayment) Apply(patch DamagesPatch, actorName string) error {
	if patch.State != nil {
		if !p.State.CanTransitionTo(*patch.State) {
			return Validation("pagoDanos", "illegal transition from "+string(p.State)+" to "+string(*patch.State))
		}
		if p.Amount == 0 && *patch.State == DamagesPending {
			return Validation("pagoDanos", "a zero amount charge cannot be pending")
		}
		p.State = *patch.State
	}
	if patch.StripeSessionID != nil {
		p.StripeSessionID = patch.StripeSessionID
	}
	if patch.StripePaymentID != nil {
		p.StripePaymentID = patch.StripePaymentID
	}
	if patch.PaidAt != nil {
		at := *patch.PaidAt
		p.PaidAt = &at
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return Validation("pagoDanos", "descripcionDanos es requerida")
		}
		p.Description = *patch.Description
	}
	name := actorName
	p.UpdatedBy = &name
	return nil
}
