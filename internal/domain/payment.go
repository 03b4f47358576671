package domain

import (
	"fmt"
	"time"
)

type Confirmation struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservaId"`
	Code          string    `json:"codigoQr"`
	Verified      string    `json:"verificada"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewConfirmation derives the verification code from the reservation id and
// the creation instant.
func NewConfirmation(reservationID int64, at time.Time) *Confirmation {
	return &Confirmation{
		ReservationID: reservationID,
		Code:          fmt.Sprintf("QR-%d-%d", reservationID, at.UnixMilli()),
		Verified:      ConfirmationPending,
	}
}

type ReservationPayment struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservaId"`
	Method        PaymentMethod `json:"metodoPago"`
	Amount        float64       `json:"monto"`
	State         PaymentState  `json:"estado"`
	Reference     string        `json:"referenciaPago"`
	CreatedAt     time.Time     `json:"createdAt"`

	Invoice *Invoice `json:"factura,omitempty"`
}

// NewReservationPayment mirrors the reservation cost into a pending charge.
func NewReservationPayment(r *Reservation, method PaymentMethod, at time.Time) *ReservationPayment {
	if !method.Valid() {
		method = DefaultPaymentMethod
	}
	return &ReservationPayment{
		ReservationID: r.ID,
		Method:        method,
		Amount:        r.Cost,
		State:         PaymentPending,
		Reference:     fmt.Sprintf("PAGO-RESERVA-%d-%d", r.ID, at.UnixMilli()),
	}
}

type Invoice struct {
	ID        int64     `json:"id"`
	PaymentID int64     `json:"pagoReservaId"`
	Number    string    `json:"numero"`
	Total     float64   `json:"total"`
	IssuedAt  time.Time `json:"fechaEmision"`
}
