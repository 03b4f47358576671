package domain

import "fmt"

type LifecycleState string

const (
	LifecyclePending   LifecycleState = "PENDING"
	LifecycleConfirmed LifecycleState = "CONFIRMED"
	LifecycleCancelled LifecycleState = "CANCELLED"
	LifecycleCompleted LifecycleState = "COMPLETED"
)

func ParseLifecycleState(s string) (LifecycleState, error) {
	st := LifecycleState(s)
	if !st.Valid() {
		return "", Validation("estado", fmt.Sprintf("unknown reservation state %q", s))
	}
	return st, nil
}

func (s LifecycleState) Valid() bool {
	switch s {
	case LifecyclePending, LifecycleConfirmed, LifecycleCancelled, LifecycleCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows re-saving the current state.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	if s == next {
		return next.Valid()
	}
	switch s {
	case LifecyclePending:
		return next == LifecycleConfirmed || next == LifecycleCancelled
	case LifecycleConfirmed:
		return next == LifecycleCompleted || next == LifecycleCancelled
	case LifecycleCancelled, LifecycleCompleted:
		return false
	}
	return false
}

// EntersConfirmed is true only on the edge into CONFIRMED.
func EntersConfirmed(prev, next LifecycleState) bool {
	return prev != LifecycleConfirmed && next == LifecycleConfirmed
}

type DeliveryState string

const (
	DeliveryPending       DeliveryState = "PENDIENTE"
	DeliveryDelivered     DeliveryState = "ENTREGADO"
	DeliveryNotApplicable DeliveryState = "NO_APLICA"
)

func ParseDeliveryState(s string) (DeliveryState, error) {
	st := DeliveryState(s)
	if !st.Valid() {
		return "", Validation("estadoEntrega", fmt.Sprintf("unknown delivery state %q", s))
	}
	return st, nil
}

func (s DeliveryState) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryDelivered, DeliveryNotApplicable:
		return true
	}
	return false
}

type DamagesState string

const (
	DamagesPending   DamagesState = "PENDIENTE"
	DamagesPaid      DamagesState = "PAGADO"
	DamagesCancelled DamagesState = "CANCELADO"
)

func ParseDamagesState(s string) (DamagesState, error) {
	st := DamagesState(s)
	if !st.Valid() {
		return "", Validation("estadoPago", fmt.Sprintf("unknown damages payment state %q", s))
	}
	return st, nil
}

func (s DamagesState) Valid() bool {
	switch s {
	case DamagesPending, DamagesPaid, DamagesCancelled:
		return true
	}
	return false
}

func (s DamagesState) CanTransitionTo(next DamagesState) bool {
	if s == next {
		return next.Valid()
	}
	switch s {
	case DamagesPending:
		return next == DamagesPaid || next == DamagesCancelled
	case DamagesPaid, DamagesCancelled:
		return false
	}
	return false
}

// Resolved is true once the charge no longer blocks the delivery.
func (s DamagesState) Resolved() bool {
	switch s {
	case DamagesPaid, DamagesCancelled:
		return true
	case DamagesPending:
		return false
	}
	return false
}

type PaymentState string

const (
	PaymentPending   PaymentState = "PENDING"
	PaymentCompleted PaymentState = "COMPLETED"
	PaymentFailed    PaymentState = "FAILED"
	PaymentRefunded  PaymentState = "REFUNDED"
)

func (s PaymentState) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodQRCode   PaymentMethod = "QR_CODE"
	MethodCard     PaymentMethod = "CARD"
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"

	DefaultPaymentMethod = MethodQRCode
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodQRCode, MethodCard, MethodCash, MethodTransfer:
		return true
	}
	return false
}

const ConfirmationPending = "PENDING"
