package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment is one attempt to collect funds for a booking via an external
// gateway. It is created pending by the initiator and transitioned to a
// terminal status exclusively by the webhook flow, matched by GatewayOrderID.
type Payment struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	Gateway          string
	GatewayOrderID   string
	GatewayPaymentID string
	Amount           float64
	Currency         string
	Status           PaymentStatus
	GatewayResponse  json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
