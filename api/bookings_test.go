package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/journeyverse/backend/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, session *auth.Session, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, session, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, session *auth.Session, id uuid.UUID) (*booking.BookingDetails, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, session *auth.Session) ([]domain.Booking, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	session := &auth.Session{UserID: uuid.New(), Email: "asha@example.com"}
	c.Set(sessionKey, session)

	input := booking.CreateBookingInput{
		Items: []booking.ItemInput{
			{Type: "flight", Name: "DEL-BOM AI805", Provider: "amadeus", Quantity: 1, UnitPrice: 8500},
		},
		Travelers: []booking.TravelerInput{
			{FirstName: "Asha", LastName: "Rao", TravelerType: "adult"},
		},
		ContactEmail: "asha@example.com",
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{
		ID:          uuid.New(),
		Reference:   "A1B2C3D4E5",
		UserID:      session.UserID,
		TotalAmount: 8500,
		Status:      domain.BookingStatusPending,
	}
	mockService.On("CreateBooking", c.Request.Context(), session, input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.Booking
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "A1B2C3D4E5", response.Reference)
	assert.Equal(t, domain.BookingStatusPending, response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_validationError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	session := &auth.Session{UserID: uuid.New()}
	c.Set(sessionKey, session)

	body, _ := json.Marshal(booking.CreateBookingInput{ContactEmail: "asha@example.com"})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), session, mock.Anything).
		Return(nil, domain.Validationf("at least one item is required"))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	session := &auth.Session{UserID: uuid.New()}
	c.Set(sessionKey, session)

	bookingID := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	c.Request = httptest.NewRequest("GET", "/bookings/"+bookingID.String(), nil)

	details := &booking.BookingDetails{
		Booking: domain.Booking{ID: bookingID, UserID: session.UserID, Status: domain.BookingStatusConfirmed},
	}
	mockService.On("GetBooking", c.Request.Context(), session, bookingID).Return(details, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response booking.BookingDetails
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, bookingID, response.Booking.ID)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_badID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Request = httptest.NewRequest("GET", "/bookings/not-a-uuid", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_get_notFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	session := &auth.Session{UserID: uuid.New()}
	c.Set(sessionKey, session)

	bookingID := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	c.Request = httptest.NewRequest("GET", "/bookings/"+bookingID.String(), nil)

	mockService.On("GetBooking", c.Request.Context(), session, bookingID).
		Return(nil, domain.ErrBookingNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	session := &auth.Session{UserID: uuid.New()}
	c.Set(sessionKey, session)
	c.Request = httptest.NewRequest("GET", "/bookings", nil)

	bookings := []domain.Booking{
		{ID: uuid.New(), UserID: session.UserID, Status: domain.BookingStatusPending},
		{ID: uuid.New(), UserID: session.UserID, Status: domain.BookingStatusConfirmed},
	}
	mockService.On("ListBookings", c.Request.Context(), session).Return(bookings, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Booking
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
}
