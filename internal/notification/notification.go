package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
)

// ReservationConfirmation is everything needed to render the confirmation
// e-mail.
type ReservationConfirmation struct {
	DestinationEmail  string   `json:"destination_email"`
	UserName          string   `json:"user_name"`
	ReservationNumber string   `json:"reservation_number"`
	AreaName          string   `json:"area_name"`
	Date              string   `json:"date"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Price             *float64 `json:"price,omitempty"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Failed(message string, err error) Result {
	res := Result{Message: message}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Gateway never returns an error; failures are reported in the Result.
type Gateway interface {
	SendReservationConfirmation(ctx context.Context, msg ReservationConfirmation) Result
}

// FromReservation renders dates in loc (d/m/yyyy, HH:MM).
func FromReservation(r *domain.Reservation, loc *time.Location) ReservationConfirmation {
	if loc == nil {
		loc = time.UTC
	}
	name := "Cliente"
	if r.UserName != nil && *r.UserName != "" {
		name = *r.UserName
	}
	area := fmt.Sprintf("Área %d", r.AreaID)
	if r.Area != nil && r.Area.Name != "" {
		area = r.Area.Name
	}
	start := r.Start.In(loc)
	msg := ReservationConfirmation{
		DestinationEmail:  r.Email(),
		UserName:          name,
		ReservationNumber: fmt.Sprintf("%d", r.ID),
		AreaName:          area,
		Date:              start.Format("2/1/2006"),
		StartTime:         start.Format("15:04"),
		EndTime:           r.End.In(loc).Format("15:04"),
	}
	if r.Cost > 0 {
		price := r.Cost
		msg.Price = &price
	}
	return msg
}
