package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type ItemType string

const (
	ItemTypeFlight         ItemType = "flight"
	ItemTypeHotel          ItemType = "hotel"
	ItemTypeCar            ItemType = "car"
	ItemTypeActivity       ItemType = "activity"
	ItemTypeRestaurant     ItemType = "restaurant"
	ItemTypeTransportation ItemType = "transportation"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFlight, ItemTypeHotel, ItemTypeCar, ItemTypeActivity, ItemTypeRestaurant, ItemTypeTransportation:
		return true
	}
	return false
}

type TravelerType string

const (
	TravelerTypeAdult  TravelerType = "adult"
	TravelerTypeChild  TravelerType = "child"
	TravelerTypeInfant TravelerType = "infant"
)

func (t TravelerType) Valid() bool {
	switch t {
	case TravelerTypeAdult, TravelerTypeChild, TravelerTypeInfant:
		return true
	}
	return false
}

// Booking is the header aggregate for a purchase attempt. TotalAmount is fixed
// at creation time from the line items and never recomputed; Status is only
// mutated by the payment webhook flow.
type Booking struct {
	ID              uuid.UUID
	Reference       string
	UserID          uuid.UUID
	TotalAmount     float64
	ContactEmail    string
	ContactPhone    string
	TravelDate      *time.Time
	SpecialRequests string
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingItem is one purchasable line owned by a booking, immutable after creation.
type BookingItem struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Type        ItemType
	Name        string
	Description string
	Provider    string
	ExternalID  string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
	ItemData    json.RawMessage
}

// Traveler is a person covered by a booking, distinct from the account holder.
type Traveler struct {
	ID             uuid.UUID
	BookingID      uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DateOfBirth    *time.Time
	PassportNumber string
	Nationality    string
	Type           TravelerType
}
