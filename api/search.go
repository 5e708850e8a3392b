package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/journeyverse/backend/internal/service/search"
)

type SearchHandler struct {
	service search.SearchUseCase
}

func NewSearchHandler(service search.SearchUseCase) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights", h.flights)
	router.POST("/hotels", h.hotels)
}

func (h *SearchHandler) flights(c *gin.Context) {
	var query domain.FlightSearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offers, err := h.service.SearchFlights(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offers})
}

func (h *SearchHandler) hotels(c *gin.Context) {
	var query domain.HotelSearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hotels, err := h.service.SearchHotels(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hotels})
}
