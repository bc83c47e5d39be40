package domain

import "time"

// Listing is one service offered on the marketplace, stored in the Services
// collection and owned by a provider profile.
type Listing struct {
	ListingID    string    `json:"id" dynamodbav:"listing_id"`
	ProviderID   string    `json:"providerId" dynamodbav:"provider_id"`
	Title        string    `json:"title" dynamodbav:"title"`
	Description  string    `json:"description" dynamodbav:"description"`
	Price        float64   `json:"price" dynamodbav:"price"`
	Availability bool      `json:"availability" dynamodbav:"availability"`
	Location     string    `json:"location" dynamodbav:"location"`
	Category     string    `json:"category" dynamodbav:"category"`
	Rating       float64   `json:"rating" dynamodbav:"rating"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateListingRequest struct {
	UserID       string   `json:"userId" validate:"required"`
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Price        *float64 `json:"price" validate:"required"`
	Availability *bool    `json:"availability" validate:"required"`
	Location     string   `json:"location" validate:"required"`
	Category     string   `json:"category" validate:"required"`
}

type UpdateListingRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Availability *bool    `json:"availability"`
	Location     *string  `json:"location"`
	Category     *string  `json:"category"`
}
