package search

import (
	"context"

	"github.com/journeyverse/backend/internal/domain"
	"go.uber.org/zap"
)

type SearchUseCase interface {
	SearchFlights(ctx context.Context, query domain.FlightSearchQuery) ([]domain.FlightOffer, error)
	SearchHotels(ctx context.Context, query domain.HotelSearchQuery) ([]domain.HotelOffer, error)
}

// Provider is the upstream inventory API.
type Provider interface {
	SearchFlights(ctx context.Context, query domain.FlightSearchQuery) ([]domain.FlightOffer, error)
	SearchHotels(ctx context.Context, query domain.HotelSearchQuery) ([]domain.HotelOffer, error)
}

// Cache holds recent search responses keyed by query.
type Cache interface {
	GetSearchResults(ctx context.Context, kind string, query any, dst any) (bool, error)
	SetSearchResults(ctx context.Context, kind string, query any, results any) error
}

type SearchService struct {
	provider Provider
	cache    Cache
	logger   *zap.Logger
}

func NewSearchService(provider Provider, cache Cache, logger *zap.Logger) *SearchService {
	return &SearchService{provider: provider, cache: cache, logger: logger}
}

func (s *SearchService) SearchFlights(ctx context.Context, query domain.FlightSearchQuery) ([]domain.FlightOffer, error) {
	if query.Origin == "" || query.Destination == "" || query.DepartureDate == "" {
		return nil, domain.Validationf("origin, destination and departureDate are required")
	}
	if query.Adults < 1 {
		return nil, domain.Validationf("at least one adult is required")
	}

	if s.cache != nil {
		var cached []domain.FlightOffer
		if hit, err := s.cache.GetSearchResults(ctx, "flights", query, &cached); err == nil && hit {
			return cached, nil
		}
	}

	offers, err := s.provider.SearchFlights(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearchResults(ctx, "flights", query, offers); err != nil {
			s.logger.Warn("failed to cache flight search results", zap.Error(err))
		}
	}
	return offers, nil
}

func (s *SearchService) SearchHotels(ctx context.Context, query domain.HotelSearchQuery) ([]domain.HotelOffer, error) {
	if query.CityCode == "" || query.CheckInDate == "" || query.CheckOutDate == "" {
		return nil, domain.Validationf("cityCode, checkInDate and checkOutDate are required")
	}
	if query.Adults < 1 {
		return nil, domain.Validationf("at least one adult is required")
	}

	if s.cache != nil {
		var cached []domain.HotelOffer
		if hit, err := s.cache.GetSearchResults(ctx, "hotels", query, &cached); err == nil && hit {
			return cached, nil
		}
	}

	hotels, err := s.provider.SearchHotels(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearchResults(ctx, "hotels", query, hotels); err != nil {
			s.logger.Warn("failed to cache hotel search results", zap.Error(err))
		}
	}
	return hotels, nil
}

var _ SearchUseCase = (*SearchService)(nil)
