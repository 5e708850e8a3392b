package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) SearchFlights(ctx context.Context, query domain.FlightSearchQuery) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func (m *MockSearchUseCase) SearchHotels(ctx context.Context, query domain.HotelSearchQuery) ([]domain.HotelOffer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotelOffer), args.Error(1)
}

func TestSearchHandler_flights(t *testing.T) {
	mockService := &MockSearchUseCase{}
	handler := NewSearchHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	query := domain.FlightSearchQuery{Origin: "DEL", Destination: "BOM", DepartureDate: "2026-10-01", Adults: 1}
	body, _ := json.Marshal(query)
	c.Request = httptest.NewRequest("POST", "/search/flights", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	offers := []domain.FlightOffer{{ID: "1", Price: domain.Price{Total: 8500, Currency: "INR"}}}
	mockService.On("SearchFlights", c.Request.Context(), query).Return(offers, nil)

	handler.flights(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.FlightOffer `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data, 1)
	assert.Equal(t, 8500.0, response.Data[0].Price.Total)

	mockService.AssertExpectations(t)
}

func TestSearchHandler_flights_providerDown(t *testing.T) {
	mockService := &MockSearchUseCase{}
	handler := NewSearchHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	query := domain.FlightSearchQuery{Origin: "DEL", Destination: "BOM", DepartureDate: "2026-10-01", Adults: 1}
	body, _ := json.Marshal(query)
	c.Request = httptest.NewRequest("POST", "/search/flights", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("SearchFlights", c.Request.Context(), query).
		Return(nil, &domain.ProviderError{StatusCode: 503, Message: "service unavailable"})

	handler.flights(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSearchHandler_hotels_validation(t *testing.T) {
	mockService := &MockSearchUseCase{}
	handler := NewSearchHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	query := domain.HotelSearchQuery{CityCode: "GOI"}
	body, _ := json.Marshal(query)
	c.Request = httptest.NewRequest("POST", "/search/hotels", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("SearchHotels", c.Request.Context(), query).
		Return(nil, domain.Validationf("cityCode, checkInDate and checkOutDate are required"))

	handler.hotels(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
