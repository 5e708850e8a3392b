package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/journeyverse/backend/internal/gateway/cashfree"
	"github.com/journeyverse/backend/internal/kafka"
	"github.com/journeyverse/backend/internal/repository"
	"go.uber.org/zap"
)

const gatewayName = "cashfree"

type PaymentUseCase interface {
	InitiatePayment(ctx context.Context, session *auth.Session, input InitiatePaymentInput) (*InitiatePaymentResult, error)
	ProcessWebhook(ctx context.Context, notification WebhookNotification) error
}

// Gateway opens orders with the external payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, order cashfree.OrderRequest) (*cashfree.OrderResult, error)
}

// Locker serializes payment initiation per booking across instances.
type Locker interface {
	AcquirePaymentLock(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, bookingID uuid.UUID) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PaymentService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	gateway            Gateway
	locker             Locker
	producer           Producer
	notificationsTopic string
	defaultCurrency    string
	lockTTL            time.Duration
	logger             *zap.Logger
}

type PaymentServiceOption func(*PaymentService)

func WithNotifications(producer Producer, topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.producer = producer
		s.notificationsTopic = topic
	}
}

func WithLocker(locker Locker, ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func NewPaymentService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	gateway Gateway,
	defaultCurrency string,
	logger *zap.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		bookings:        bookings,
		payments:        payments,
		gateway:         gateway,
		defaultCurrency: defaultCurrency,
		lockTTL:         30 * time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CustomerInput struct {
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

type InitiatePaymentInput struct {
	BookingID uuid.UUID     `json:"bookingId"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency,omitempty"`
	Customer  CustomerInput `json:"customerDetails"`
	ReturnURL string        `json:"returnUrl"`
}

type InitiatePaymentResult struct {
	PaymentID        uuid.UUID `json:"paymentId"`
	OrderID          string    `json:"orderId"`
	PaymentSessionID string    `json:"paymentSessionId"`
	PaymentURL       string    `json:"paymentUrl,omitempty"`
}

// InitiatePayment opens a gateway order for a pending booking and records the
// attempt. The charged amount is always the booking's stored total; a
// client-supplied amount is only cross-checked, never trusted.
func (s *PaymentService) InitiatePayment(ctx context.Context, session *auth.Session, input InitiatePaymentInput) (*InitiatePaymentResult, error) {
	if session == nil {
		return nil, domain.ErrUnauthenticated
	}
	if input.ReturnURL == "" {
		return nil, domain.Validationf("returnUrl is required")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != session.UserID {
		return nil, domain.ErrBookingNotFound
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.ErrBookingNotPending
	}
	if input.Amount != 0 && input.Amount != booking.TotalAmount {
		return nil, domain.Validationf("amount %.2f does not match the booking total %.2f", input.Amount, booking.TotalAmount)
	}

	if s.locker != nil {
		locked, err := s.locker.AcquirePaymentLock(ctx, booking.ID, s.lockTTL)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "acquire payment lock", Err: err}
		}
		if !locked {
			return nil, domain.ErrPaymentInFlight
		}
		defer func() {
			_ = s.locker.ReleasePaymentLock(ctx, booking.ID)
		}()
	}

	// One non-terminal payment per booking: a second initiation while one is
	// pending (or after one succeeded) would open a duplicate gateway order.
	if existing, err := s.payments.FindActiveByBooking(ctx, booking.ID); err == nil && existing != nil {
		return nil, domain.ErrPaymentExists
	} else if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, &domain.PersistenceError{Op: "check existing payments", Err: err}
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	orderID := fmt.Sprintf("JV_%s_%d", booking.Reference, time.Now().UnixMilli())

	result, err := s.gateway.CreateOrder(ctx, cashfree.OrderRequest{
		OrderID:  orderID,
		Amount:   booking.TotalAmount,
		Currency: currency,
		Customer: cashfree.CustomerDetails{
			CustomerID:    input.Customer.CustomerID,
			CustomerName:  input.Customer.CustomerName,
			CustomerEmail: input.Customer.CustomerEmail,
			CustomerPhone: input.Customer.CustomerPhone,
		},
		ReturnURL: input.ReturnURL,
		Note:      fmt.Sprintf("Payment for Journey Verse booking %s", booking.Reference),
	})
	if err != nil {
		return nil, err
	}
	if result.PaymentURL == "" && result.PaymentSessionID == "" {
		return nil, &domain.GatewayError{Message: "gateway returned no usable payment link"}
	}

	payment := &domain.Payment{
		ID:              uuid.New(),
		BookingID:       booking.ID,
		Gateway:         gatewayName,
		GatewayOrderID:  orderID,
		Amount:          booking.TotalAmount,
		Currency:        currency,
		Status:          domain.PaymentStatusPending,
		GatewayResponse: result.Raw,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		// The gateway already accepted this order; without a local row the
		// webhook for it can never be matched. Reconciled out of band.
		s.logger.Error("payment row write failed after gateway accepted order",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_order_id", orderID),
			zap.ByteString("gateway_response", result.Raw),
			zap.Error(err))
		return nil, &domain.PersistenceError{Op: "create payment", Err: err}
	}

	s.logger.Info("payment initiated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("gateway_order_id", orderID),
		zap.Float64("amount", payment.Amount),
		zap.String("currency", currency))

	return &InitiatePaymentResult{
		PaymentID:        payment.ID,
		OrderID:          orderID,
		PaymentSessionID: result.PaymentSessionID,
		PaymentURL:       result.PaymentURL,
	}, nil
}

// WebhookNotification is the reconciled content of one gateway notification.
// Raw carries the full verified body for the audit column.
type WebhookNotification struct {
	OrderID          string
	PaymentStatus    string
	GatewayPaymentID string
	OrderAmount      float64
	Raw              json.RawMessage
}

// ProcessWebhook applies a gateway notification to the stored Payment/Booking
// pair. Re-delivery of an already-applied terminal status is a no-op; a
// different terminal status for a finalized payment is a conflict and is
// never overwritten.
func (s *PaymentService) ProcessWebhook(ctx context.Context, n WebhookNotification) error {
	payment, err := s.payments.GetByOrderID(ctx, n.OrderID)
	if err != nil {
		return err
	}

	paymentStatus, bookingStatus, terminal := mapGatewayStatus(n.PaymentStatus)
	if !terminal {
		s.logger.Info("webhook with non-terminal status ignored",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("gateway_status", n.PaymentStatus))
		return nil
	}

	if payment.Status == paymentStatus {
		s.logger.Info("webhook already applied",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("status", string(paymentStatus)))
		return nil
	}
	if payment.Status.Terminal() {
		return domain.ErrPaymentConflict
	}

	applied, err := s.payments.FinalizeFromPending(ctx, n.OrderID, paymentStatus, n.GatewayPaymentID, n.Raw)
	if err != nil {
		return &domain.PersistenceError{Op: "finalize payment", Err: err}
	}
	if !applied {
		// A concurrent delivery finalized the row first. Re-read to tell the
		// idempotent case from a genuine conflict.
		current, err := s.payments.GetByOrderID(ctx, n.OrderID)
		if err != nil {
			return err
		}
		if current.Status == paymentStatus {
			return nil
		}
		return domain.ErrPaymentConflict
	}

	transitioned, err := s.bookings.TransitionStatus(ctx, payment.BookingID, bookingStatus)
	if err != nil {
		s.logger.Error("booking status update failed after payment finalized",
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("gateway_order_id", n.OrderID),
			zap.String("payment_status", string(paymentStatus)),
			zap.String("wanted_booking_status", string(bookingStatus)),
			zap.Error(err))
		return domain.ErrReconciliationNeeded
	}
	if !transitioned {
		s.logger.Warn("booking was not pending when its payment finalized",
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("gateway_order_id", n.OrderID))
	}

	s.logger.Info("payment finalized",
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("gateway_order_id", n.OrderID),
		zap.String("payment_status", string(paymentStatus)),
		zap.String("booking_status", string(bookingStatus)))

	s.publishOutcome(ctx, payment, paymentStatus)
	return nil
}

func (s *PaymentService) publishOutcome(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}

	eventType := kafka.EventPaymentFailed
	if status == domain.PaymentStatusSuccess {
		eventType = kafka.EventPaymentSucceeded
	}

	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		s.logger.Warn("failed to load booking for payment event", zap.Error(err))
		return
	}

	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID.String(),
		Reference:  booking.Reference,
		Email:      booking.ContactEmail,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Status:     string(booking.Status),
		OccurredAt: time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("type", eventType),
			zap.String("reference", booking.Reference),
			zap.Error(err))
	}
}

// mapGatewayStatus is the fixed translation from the gateway's status
// vocabulary to the internal Payment/Booking status pair. Anything unknown is
// treated as still pending.
func mapGatewayStatus(gatewayStatus string) (domain.PaymentStatus, domain.BookingStatus, bool) {
	switch gatewayStatus {
	case "SUCCESS":
		return domain.PaymentStatusSuccess, domain.BookingStatusConfirmed, true
	case "FAILED", "CANCELLED":
		return domain.PaymentStatusFailed, domain.BookingStatusCancelled, true
	default:
		return domain.PaymentStatusPending, domain.BookingStatusPending, false
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
