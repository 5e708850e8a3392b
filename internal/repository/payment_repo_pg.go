package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/journeyverse/backend/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error)
	// FindActiveByBooking returns the booking's pending or succeeded payment,
	// or ErrPaymentNotFound when every attempt so far has failed.
	FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error)
	// FinalizeFromPending transitions a pending payment to a terminal status,
	// recording the gateway payment id and the raw notification. It reports
	// false without error when the row was no longer pending, so concurrent
	// webhook deliveries apply the transition exactly once.
	FinalizeFromPending(ctx context.Context, gatewayOrderID string, status domain.PaymentStatus, gatewayPaymentID string, rawResponse json.RawMessage) (bool, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, payment_gateway, gateway_order_id, COALESCE(gateway_payment_id, ''), amount, currency, status, gateway_response, created_at, updated_at`

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (id, booking_id, payment_gateway, gateway_order_id, amount, currency, status, gateway_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		payment.ID, payment.BookingID, payment.Gateway, payment.GatewayOrderID,
		payment.Amount, payment.Currency, payment.Status, payment.GatewayResponse).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_order_id=$1`, gatewayOrderID)
	return scanPayment(row)
}

func (r *PGPaymentRepository) FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE booking_id=$1 AND status IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1`,
		bookingID, domain.PaymentStatusPending, domain.PaymentStatusSuccess)
	return scanPayment(row)
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *PGPaymentRepository) FinalizeFromPending(ctx context.Context, gatewayOrderID string, status domain.PaymentStatus, gatewayPaymentID string, rawResponse json.RawMessage) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE payments SET status=$1, gateway_payment_id=$2, gateway_response=$3, updated_at=now()
		WHERE gateway_order_id=$4 AND status=$5`,
		status, gatewayPaymentID, rawResponse, gatewayOrderID, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Gateway, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Amount, &p.Currency, &p.Status, &p.GatewayResponse, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
