package model

import "time"

// Review is guest feedback for a property. Exactly one review may exist per
// (property, author) pair; the storage layer enforces this with a unique
// index so a racing duplicate submission fails at insert time.
type Review struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required,uuid4"`
	AuthorID   string    `json:"author_id" bson:"author_id" validate:"required"`
	Rating     int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment    string    `json:"comment" bson:"comment" validate:"required"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReviewUpdate carries the editable fields of a review. The (property,
// author) pairing is immutable.
type ReviewUpdate struct {
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// PropertyAggregates are read projections over the booking and review sets.
// AverageRating is nil when the property has no reviews: "no data" is not a
// score of zero.
type PropertyAggregates struct {
	PropertyID            string   `json:"property_id"`
	AverageRating         *float64 `json:"average_rating"`
	ReviewCount           int64    `json:"review_count"`
	ConfirmedBookingCount int64    `json:"confirmed_booking_count"`
}
