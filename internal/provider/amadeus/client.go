// Package amadeus is a read-through client for the Amadeus self-service
// flight and hotel search APIs. It never mutates persisted state.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/journeyverse/backend/config"
	"github.com/journeyverse/backend/internal/domain"
)

// tokenSafetyMargin is subtracted from the provider's stated token validity
// so a token is never used in the last moments before it expires.
const tokenSafetyMargin = 60 * time.Second

// TokenStore caches the short-lived provider access token across instances.
type TokenStore interface {
	GetProviderToken(ctx context.Context, provider string) (string, error)
	SetProviderToken(ctx context.Context, provider, token string, ttl time.Duration) error
}

type Client struct {
	apiURL    string
	apiKey    string
	apiSecret string
	client    *http.Client
	tokens    TokenStore

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg config.AmadeusConfig, tokens TokenStore) *Client {
	return &Client{
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		tokens:    tokens,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a valid provider token, exchanging credentials only
// when both the in-process copy and the shared cache have expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	if c.tokens != nil {
		cached, err := c.tokens.GetProviderToken(ctx, "amadeus")
		if err == nil && cached != "" {
			c.token = cached
			c.tokenExpiry = time.Now().Add(tokenSafetyMargin)
			return cached, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Message: "token exchange failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{StatusCode: resp.StatusCode, Message: "token exchange rejected"}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil || tok.AccessToken == "" {
		return "", &domain.ProviderError{StatusCode: resp.StatusCode, Message: "malformed token response", Err: err}
	}

	ttl := time.Duration(tok.ExpiresIn)*time.Second - tokenSafetyMargin
	if ttl < time.Minute {
		ttl = time.Minute
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)
	if c.tokens != nil {
		_ = c.tokens.SetProviderToken(ctx, "amadeus", tok.AccessToken, ttl)
	}
	return tok.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.ProviderError{Message: "provider request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Message: "failed to read provider response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Message: "malformed provider response", Err: err}
	}
	return nil
}

type flightOffersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Aircraft    struct {
					Code string `json:"code"`
				} `json:"aircraft"`
				Duration string `json:"duration"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// SearchFlights forwards a normalized flight query and reshapes the
// provider's offers into the product's item model.
func (c *Client) SearchFlights(ctx context.Context, q domain.FlightSearchQuery) ([]domain.FlightOffer, error) {
	travelClass := q.TravelClass
	if travelClass == "" {
		travelClass = "ECONOMY"
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("children", strconv.Itoa(q.Children))
	params.Set("infants", strconv.Itoa(q.Infants))
	params.Set("travelClass", travelClass)
	params.Set("max", "10")
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}

	var resp flightOffersResponse
	if err := c.get(ctx, "/v2/shopping/flight-offers", params, &resp); err != nil {
		return nil, err
	}

	offers := make([]domain.FlightOffer, 0, len(resp.Data))
	for _, o := range resp.Data {
		total, _ := strconv.ParseFloat(o.Price.Total, 64)
		offer := domain.FlightOffer{
			ID:    o.ID,
			Price: domain.Price{Total: total, Currency: o.Price.Currency},
		}
		for _, it := range o.Itineraries {
			itinerary := domain.FlightItinerary{Duration: it.Duration}
			for _, seg := range it.Segments {
				itinerary.Segments = append(itinerary.Segments, domain.FlightSegment{
					DepartureCode: seg.Departure.IataCode,
					DepartureAt:   seg.Departure.At,
					ArrivalCode:   seg.Arrival.IataCode,
					ArrivalAt:     seg.Arrival.At,
					CarrierCode:   seg.CarrierCode,
					Number:        seg.Number,
					Aircraft:      seg.Aircraft.Code,
					Duration:      seg.Duration,
				})
			}
			offer.Itineraries = append(offer.Itineraries, itinerary)
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID   string  `json:"hotelId"`
			Name      string  `json:"name"`
			Rating    string  `json:"rating"`
			CityCode  string  `json:"cityCode"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"hotel"`
		Offers []struct {
			ID           string `json:"id"`
			CheckInDate  string `json:"checkInDate"`
			CheckOutDate string `json:"checkOutDate"`
			Room         struct {
				TypeEstimated struct {
					Category string `json:"category"`
				} `json:"typeEstimated"`
			} `json:"room"`
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels looks up hotels for the city and then fetches offers for the
// first 20. An unknown city yields an empty result, not an error.
func (c *Client) SearchHotels(ctx context.Context, q domain.HotelSearchQuery) ([]domain.HotelOffer, error) {
	listParams := url.Values{}
	listParams.Set("cityCode", q.CityCode)
	listParams.Set("radius", "20")
	listParams.Set("radiusUnit", "KM")
	listParams.Set("hotelSource", "ALL")

	var list hotelListResponse
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", listParams, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return []domain.HotelOffer{}, nil
	}

	ids := make([]string, 0, 20)
	for _, h := range list.Data {
		ids = append(ids, h.HotelID)
		if len(ids) == 20 {
			break
		}
	}

	rooms := q.Rooms
	if rooms <= 0 {
		rooms = 1
	}

	offerParams := url.Values{}
	offerParams.Set("hotelIds", strings.Join(ids, ","))
	offerParams.Set("checkInDate", q.CheckInDate)
	offerParams.Set("checkOutDate", q.CheckOutDate)
	offerParams.Set("adults", strconv.Itoa(q.Adults))
	offerParams.Set("roomQuantity", strconv.Itoa(rooms))

	var resp hotelOffersResponse
	if err := c.get(ctx, "/v3/shopping/hotel-offers", offerParams, &resp); err != nil {
		return nil, err
	}

	hotels := make([]domain.HotelOffer, 0, len(resp.Data))
	for _, h := range resp.Data {
		hotel := domain.HotelOffer{
			ID:        h.Hotel.HotelID,
			Name:      h.Hotel.Name,
			Rating:    h.Hotel.Rating,
			CityCode:  h.Hotel.CityCode,
			Latitude:  h.Hotel.Latitude,
			Longitude: h.Hotel.Longitude,
		}
		for _, o := range h.Offers {
			total, _ := strconv.ParseFloat(o.Price.Total, 64)
			hotel.Offers = append(hotel.Offers, domain.HotelRoomOffer{
				ID:           o.ID,
				CheckInDate:  o.CheckInDate,
				CheckOutDate: o.CheckOutDate,
				RoomType:     o.Room.TypeEstimated.Category,
				Price:        domain.Price{Total: total, Currency: o.Price.Currency},
			})
		}
		hotels = append(hotels, hotel)
	}
	return hotels, nil
}
