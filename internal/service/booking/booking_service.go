package booking

import (
	"context"
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/journeyverse/backend/internal/kafka"
	"github.com/journeyverse/backend/internal/repository"
	"github.com/lithammer/shortuuid/v3"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, session *auth.Session, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, session *auth.Session, id uuid.UUID) (*BookingDetails, error)
	ListBookings(ctx context.Context, session *auth.Session) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	producer           Producer
	notificationsTopic string
	logger             *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotifications(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		payments: payments,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type ItemInput struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Provider    string          `json:"provider"`
	ExternalID  string          `json:"externalId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unitPrice"`
	ItemData    json.RawMessage `json:"itemData,omitempty"`
}

type TravelerInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	TravelerType   string `json:"travelerType"`
}

type CreateBookingInput struct {
	Items           []ItemInput     `json:"items"`
	Travelers       []TravelerInput `json:"travelers"`
	ContactEmail    string          `json:"contactEmail"`
	ContactPhone    string          `json:"contactPhone,omitempty"`
	TravelDate      string          `json:"travelDate,omitempty"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
}

// BookingDetails is the full aggregate: header plus owned rows.
type BookingDetails struct {
	Booking   domain.Booking       `json:"booking"`
	Items     []domain.BookingItem `json:"items"`
	Travelers []domain.Traveler    `json:"travelers"`
	Payments  []domain.Payment     `json:"payments"`
}

const dateLayout = "2006-01-02"

// CreateBooking validates the request, computes the total from the line
// items, and persists the whole aggregate in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, session *auth.Session, input CreateBookingInput) (*domain.Booking, error) {
	if session == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var travelDate *time.Time
	if input.TravelDate != "" {
		parsed, err := time.Parse(dateLayout, input.TravelDate)
		if err != nil {
			return nil, domain.Validationf("travelDate must be formatted as YYYY-MM-DD")
		}
		travelDate = &parsed
	}

	var total float64
	items := make([]domain.BookingItem, 0, len(input.Items))
	for _, in := range input.Items {
		lineTotal := float64(in.Quantity) * in.UnitPrice
		total += lineTotal
		items = append(items, domain.BookingItem{
			ID:          uuid.New(),
			Type:        domain.ItemType(in.Type),
			Name:        in.Name,
			Description: in.Description,
			Provider:    in.Provider,
			ExternalID:  in.ExternalID,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TotalPrice:  lineTotal,
			ItemData:    in.ItemData,
		})
	}

	travelers := make([]domain.Traveler, 0, len(input.Travelers))
	for _, in := range input.Travelers {
		t := domain.Traveler{
			ID:             uuid.New(),
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			Email:          in.Email,
			Phone:          in.Phone,
			PassportNumber: in.PassportNumber,
			Nationality:    in.Nationality,
			Type:           domain.TravelerType(in.TravelerType),
		}
		if in.DateOfBirth != "" {
			dob, err := time.Parse(dateLayout, in.DateOfBirth)
			if err != nil {
				return nil, domain.Validationf("traveler dateOfBirth must be formatted as YYYY-MM-DD")
			}
			t.DateOfBirth = &dob
		}
		travelers = append(travelers, t)
	}

	booking := &domain.Booking{
		ID:              uuid.New(),
		Reference:       newReference(),
		UserID:          session.UserID,
		TotalAmount:     total,
		ContactEmail:    input.ContactEmail,
		ContactPhone:    input.ContactPhone,
		TravelDate:      travelDate,
		SpecialRequests: input.SpecialRequests,
	}

	if err := s.bookings.CreateWithDetails(ctx, booking, items, travelers); err != nil {
		return nil, &domain.PersistenceError{Op: "create booking", Err: err}
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.Float64("total_amount", booking.TotalAmount),
		zap.Int("items", len(items)),
		zap.Int("travelers", len(travelers)))

	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, session *auth.Session, id uuid.UUID) (*BookingDetails, error) {
	if session == nil {
		return nil, domain.ErrUnauthenticated
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Another user's booking is indistinguishable from a missing one.
	if booking.UserID != session.UserID {
		return nil, domain.ErrBookingNotFound
	}

	items, err := s.bookings.ListItems(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list booking items", Err: err}
	}
	travelers, err := s.bookings.ListTravelers(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list booking travelers", Err: err}
	}
	payments, err := s.payments.ListByBooking(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list booking payments", Err: err}
	}

	return &BookingDetails{Booking: *booking, Items: items, Travelers: travelers, Payments: payments}, nil
}

func (s *BookingService) ListBookings(ctx context.Context, session *auth.Session) ([]domain.Booking, error) {
	if session == nil {
		return nil, domain.ErrUnauthenticated
	}
	bookings, err := s.bookings.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

func validateCreateInput(input CreateBookingInput) error {
	if len(input.Items) == 0 {
		return domain.Validationf("at least one item is required")
	}
	if len(input.Travelers) == 0 {
		return domain.Validationf("at least one traveler is required")
	}
	if input.ContactEmail == "" {
		return domain.Validationf("contactEmail is required")
	}
	if _, err := mail.ParseAddress(input.ContactEmail); err != nil {
		return domain.Validationf("contactEmail is not a valid email address")
	}

	for i, item := range input.Items {
		if !domain.ItemType(item.Type).Valid() {
			return domain.Validationf("items[%d].type %q is not a supported item type", i, item.Type)
		}
		if strings.TrimSpace(item.Name) == "" {
			return domain.Validationf("items[%d].name is required", i)
		}
		if item.Quantity < 1 {
			return domain.Validationf("items[%d].quantity must be at least 1", i)
		}
		if item.UnitPrice < 0 {
			return domain.Validationf("items[%d].unitPrice must not be negative", i)
		}
	}

	for i, traveler := range input.Travelers {
		if strings.TrimSpace(traveler.FirstName) == "" || strings.TrimSpace(traveler.LastName) == "" {
			return domain.Validationf("travelers[%d] requires firstName and lastName", i)
		}
		if !domain.TravelerType(traveler.TravelerType).Valid() {
			return domain.Validationf("travelers[%d].travelerType %q is not supported", i, traveler.TravelerType)
		}
	}
	return nil
}

// newReference builds the human-readable code printed on confirmations and
// embedded in gateway order ids.
func newReference() string {
	return strings.ToUpper(shortuuid.New()[:10])
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID.String(),
		Reference:  booking.Reference,
		Email:      booking.ContactEmail,
		Amount:     booking.TotalAmount,
		Status:     string(booking.Status),
		OccurredAt: time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("reference", booking.Reference),
			zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
