package domain

// Normalized inventory search queries and the reshaped provider results.
// The provider's raw offer payloads are reduced to the fields the booking UI
// turns into BookingItems.

type FlightSearchQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children,omitempty"`
	Infants       int    `json:"infants,omitempty"`
	TravelClass   string `json:"class,omitempty"`
}

type HotelSearchQuery struct {
	CityCode     string `json:"cityCode"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Adults       int    `json:"adults"`
	Rooms        int    `json:"rooms,omitempty"`
	Children     int    `json:"children,omitempty"`
}

type Price struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

type FlightSegment struct {
	DepartureCode string `json:"departureCode"`
	DepartureAt   string `json:"departureAt"`
	ArrivalCode   string `json:"arrivalCode"`
	ArrivalAt     string `json:"arrivalAt"`
	CarrierCode   string `json:"carrierCode"`
	Number        string `json:"number"`
	Aircraft      string `json:"aircraft,omitempty"`
	Duration      string `json:"duration"`
}

type FlightItinerary struct {
	Duration string          `json:"duration"`
	Segments []FlightSegment `json:"segments"`
}

type FlightOffer struct {
	ID          string            `json:"id"`
	Price       Price             `json:"price"`
	Itineraries []FlightItinerary `json:"itineraries"`
}

type HotelRoomOffer struct {
	ID           string `json:"id"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	RoomType     string `json:"roomType,omitempty"`
	Price        Price  `json:"price"`
}

type HotelOffer struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Rating    string           `json:"rating,omitempty"`
	CityCode  string           `json:"cityCode"`
	Latitude  float64          `json:"latitude,omitempty"`
	Longitude float64          `json:"longitude,omitempty"`
	Offers    []HotelRoomOffer `json:"offers"`
}
