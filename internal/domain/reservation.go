package domain

import (
	"strings"
	"time"
)

type Area struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion,omitempty"`
	Capacity    int     `json:"capacidad,omitempty"`
	HourlyCost  float64 `json:"costoHora,omitempty"`
}

// Reservation is the aggregate root; its children live and die with it.
type Reservation struct {
	ID        int64          `json:"id"`
	AreaID    int64          `json:"areaId"`
	UserID    string         `json:"usuarioId"`
	UserName  *string        `json:"usuarioNombre,omitempty"`
	UserRole  *string        `json:"usuarioRol,omitempty"`
	UserEmail *string        `json:"usuarioEmail,omitempty"`
	Start     time.Time      `json:"inicio"`
	End       time.Time      `json:"fin"`
	Cost      float64        `json:"costo"`
	State     LifecycleState `json:"estado"`

	DeliveryState DeliveryState `json:"estadoEntrega"`
	DeliveryCost  *float64      `json:"costoEntrega,omitempty"`
	DeliveryPaid  bool          `json:"pagoEntrega"`
	DeliveryNotes *string       `json:"observacionesEntrega,omitempty"`
	DeliveredBy   *string       `json:"usuarioEntrega,omitempty"`
	DeliveredAt   *time.Time    `json:"fechaEntrega"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Area            *Area                `json:"area,omitempty"`
	Confirmation    *Confirmation        `json:"confirmacion,omitempty"`
	Payments        []ReservationPayment `json:"pagosReserva,omitempty"`
	DamagesPayments []DamagesPayment     `json:"pagosDanos,omitempty"`
}

func (r *Reservation) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return Validation("reserva", "usuarioId es requerido")
	}
	if r.Cost < 0 {
		return Validation("reserva", "costo must not be negative")
	}
	if !r.Start.Before(r.End) {
		return Validation("reserva", "inicio must be before fin")
	}
	if !r.State.Valid() {
		return Validation("reserva", "invalid estado")
	}
	if !r.DeliveryState.Valid() {
		return Validation("reserva", "invalid estadoEntrega")
	}
	return nil
}

// OwnedBy compares against the stringified requester identity.
func (r *Reservation) OwnedBy(userID string) bool {
	return r.UserID == userID
}

// Invoice returns the first invoice attached to any of the payments.
func (r *Reservation) Invoice() *Invoice {
	for i := range r.Payments {
		if r.Payments[i].Invoice != nil {
			return r.Payments[i].Invoice
		}
	}
	return nil
}

// DeliveryRecord is the handover data captured by an administrator.
type DeliveryRecord struct {
	Cost     *float64
	Paid     bool
	Notes    *string
	Handler  string
	Declared float64
}

// ResolveDelivery decides the delivery state from the declared damages and
// whether an unresolved positive charge already exists for the reservation.
func ResolveDelivery(declaredDamages float64, outstanding bool) DeliveryState {
	if declaredDamages > 0 || outstanding {
		return DeliveryPending
	}
	return DeliveryDelivered
}

// RecordDelivery applies handover data. DeliveredAt is only kept for ENTREGADO.
func (r *Reservation) RecordDelivery(rec DeliveryRecord, outstanding bool, now time.Time) DeliveryState {
	state := ResolveDelivery(rec.Declared, outstanding)
	r.DeliveryState = state
	r.DeliveryCost = rec.Cost
	r.DeliveryPaid = rec.Paid
	r.DeliveryNotes = rec.Notes
	handler := rec.Handler
	r.DeliveredBy = &handler
	if state == DeliveryDelivered {
		at := now
		r.DeliveredAt = &at
	} else {
		r.DeliveredAt = nil
	}
	return state
}

// CloseDelivery advances a pending handover once nothing is owed.
func (r *Reservation) CloseDelivery(now time.Time) bool {
	if r.DeliveryState == DeliveryDelivered {
		return false
	}
	r.DeliveryState = DeliveryDelivered
	if r.DeliveredAt == nil {
		at := now
		r.DeliveredAt = &at
	}
	return true
}

// ReservationPatch holds the optional fields of an update.
type ReservationPatch struct {
	AreaID        *int64
	Start         *time.Time
	End           *time.Time
	Cost          *float64
	State         *LifecycleState
	DeliveryState *DeliveryState
	UserName      *string
	UserRole      *string
	UserEmail     *string
}

// Apply mutates r and validates the result.
func (r *Reservation) Apply(p ReservationPatch) error {
	if p.State != nil {
		if !r.State.CanTransitionTo(*p.State) {
			return Validation("reserva", "illegal transition from "+string(r.State)+" to "+string(*p.State))
		}
		r.State = *p.State
	}
	if p.AreaID != nil {
		r.AreaID = *p.AreaID
	}
	if p.Start != nil {
		r.Start = *p.Start
	}
	if p.End != nil {
		r.End = *p.End
	}
	if p.Cost != nil {
		r.Cost = *p.Cost
	}
	if p.DeliveryState != nil {
		r.DeliveryState = *p.DeliveryState
	}
	if p.UserName != nil {
		r.UserName = p.UserName
	}
	if p.UserRole != nil {
		r.UserRole = p.UserRole
	}
	if p.UserEmail != nil {
		r.UserEmail = p.UserEmail
	}
	return r.Validate()
}

func (r *Reservation) Email() string {
	if r.UserEmail == nil {
		return ""
	}
	return strings.TrimSpace(*r.UserEmail)
}
