package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateWithDetails(ctx context.Context, booking *domain.Booking, items []domain.BookingItem, travelers []domain.Traveler) error {
	args := m.Called(ctx, booking, items, travelers)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingItem), args.Error(1)
}

func (m *MockBookingRepository) ListTravelers(ctx context.Context, bookingID uuid.UUID) ([]domain.Traveler, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Traveler), args.Error(1)
}

func (m *MockBookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FinalizeFromPending(ctx context.Context, gatewayOrderID string, status domain.PaymentStatus, gatewayPaymentID string, rawResponse json.RawMessage) (bool, error) {
	args := m.Called(ctx, gatewayOrderID, status, gatewayPaymentID, rawResponse)
	return args.Bool(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		Items: []ItemInput{
			{Type: "flight", Name: "DEL-BOM AI805", Provider: "amadeus", Quantity: 1, UnitPrice: 8500},
			{Type: "hotel", Name: "Sea View Deluxe", Provider: "amadeus", Quantity: 2, UnitPrice: 6000},
		},
		Travelers: []TravelerInput{
			{FirstName: "Asha", LastName: "Rao", TravelerType: "adult"},
			{FirstName: "Veer", LastName: "Rao", TravelerType: "child"},
		},
		ContactEmail: "asha@example.com",
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPayments := &MockPaymentRepository{}
	mockProducer := &MockProducer{}

	service := NewBookingService(mockRepo, mockPayments, zap.NewNop(),
		WithNotifications(mockProducer, "notifications"))

	ctx := context.Background()
	session := &auth.Session{UserID: uuid.New(), Email: "asha@example.com"}

	mockRepo.On("CreateWithDetails", ctx, mock.AnythingOfType("*domain.Booking"),
		mock.AnythingOfType("[]domain.BookingItem"), mock.AnythingOfType("[]domain.Traveler")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, session, validInput())

	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, 8500.0+2*6000.0, booking.TotalAmount)
	assert.Equal(t, session.UserID, booking.UserID)
	assert.NotEmpty(t, booking.Reference)

	call := mockRepo.Calls[0]
	items := call.Arguments.Get(2).([]domain.BookingItem)
	travelers := call.Arguments.Get(3).([]domain.Traveler)
	require.Len(t, items, 2)
	require.Len(t, travelers, 2)
	assert.Equal(t, 8500.0, items[0].TotalPrice)
	assert.Equal(t, 12000.0, items[1].TotalPrice)

	mockRepo.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockPaymentRepository{}, zap.NewNop())
	ctx := context.Background()
	session := &auth.Session{UserID: uuid.New()}

	testCases := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"no items", func(in *CreateBookingInput) { in.Items = nil }},
		{"no travelers", func(in *CreateBookingInput) { in.Travelers = nil }},
		{"missing contact email", func(in *CreateBookingInput) { in.ContactEmail = "" }},
		{"malformed contact email", func(in *CreateBookingInput) { in.ContactEmail = "not-an-email" }},
		{"zero quantity", func(in *CreateBookingInput) { in.Items[0].Quantity = 0 }},
		{"negative unit price", func(in *CreateBookingInput) { in.Items[0].UnitPrice = -1 }},
		{"unknown item type", func(in *CreateBookingInput) { in.Items[0].Type = "cruise" }},
		{"blank item name", func(in *CreateBookingInput) { in.Items[0].Name = "  " }},
		{"traveler without last name", func(in *CreateBookingInput) { in.Travelers[0].LastName = "" }},
		{"unknown traveler type", func(in *CreateBookingInput) { in.Travelers[0].TravelerType = "pet" }},
		{"bad travel date", func(in *CreateBookingInput) { in.TravelDate = "next tuesday" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			booking, err := service.CreateBooking(ctx, session, input)

			assert.Nil(t, booking)
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestBookingService_CreateBooking_NoSession(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockPaymentRepository{}, zap.NewNop())

	booking, err := service.CreateBooking(context.Background(), nil, validInput())

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestBookingService_CreateBooking_PersistenceError(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, &MockPaymentRepository{}, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("CreateWithDetails", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused")).Once()

	booking, err := service.CreateBooking(ctx, &auth.Session{UserID: uuid.New()}, validInput())

	assert.Nil(t, booking)
	var pErr *domain.PersistenceError
	assert.ErrorAs(t, err, &pErr)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_CreateBooking_PublishFailureDoesNotFail(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(mockRepo, &MockPaymentRepository{}, zap.NewNop(),
		WithNotifications(mockProducer, "notifications"))

	ctx := context.Background()
	mockRepo.On("CreateWithDetails", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()

	booking, err := service.CreateBooking(ctx, &auth.Session{UserID: uuid.New()}, validInput())

	require.NoError(t, err)
	assert.NotNil(t, booking)
}

func TestBookingService_GetBooking_OwnershipEnforced(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, &MockPaymentRepository{}, zap.NewNop())

	ctx := context.Background()
	bookingID := uuid.New()
	owner := uuid.New()
	stranger := &auth.Session{UserID: uuid.New()}

	mockRepo.On("GetByID", ctx, bookingID).
		Return(&domain.Booking{ID: bookingID, UserID: owner, Status: domain.BookingStatusPending}, nil).Once()

	details, err := service.GetBooking(ctx, stranger, bookingID)

	assert.Nil(t, details)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingService_GetBooking_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPayments := &MockPaymentRepository{}
	service := NewBookingService(mockRepo, mockPayments, zap.NewNop())

	ctx := context.Background()
	bookingID := uuid.New()
	owner := uuid.New()
	session := &auth.Session{UserID: owner}

	mockRepo.On("GetByID", ctx, bookingID).
		Return(&domain.Booking{ID: bookingID, UserID: owner, Status: domain.BookingStatusConfirmed}, nil).Once()
	mockRepo.On("ListItems", ctx, bookingID).Return([]domain.BookingItem{{BookingID: bookingID}}, nil).Once()
	mockRepo.On("ListTravelers", ctx, bookingID).Return([]domain.Traveler{{BookingID: bookingID}}, nil).Once()
	mockPayments.On("ListByBooking", ctx, bookingID).Return([]domain.Payment{{BookingID: bookingID}}, nil).Once()

	details, err := service.GetBooking(ctx, session, bookingID)

	require.NoError(t, err)
	assert.Len(t, details.Items, 1)
	assert.Len(t, details.Travelers, 1)
	assert.Len(t, details.Payments, 1)
}
