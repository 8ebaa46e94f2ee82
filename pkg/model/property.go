package model

import "time"

// Principal roles. Every principal carries exactly one.
const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

// Property is a short-term rental listing. The nightly rate is stored in
// minor currency units (cents) so price arithmetic stays exact.
type Property struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name             string    `json:"name" bson:"name" validate:"required,min=2,max=255"`
	Description      string    `json:"description" bson:"description" validate:"required"`
	Location         string    `json:"location" bson:"location" validate:"required,max=255"`
	HostID           string    `json:"host_id" bson:"host_id" validate:"required"`
	NightlyRateCents int64     `json:"nightly_rate_cents" bson:"nightly_rate_cents" validate:"required,gt=0"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// PropertyUpdate carries the mutable fields of a property. The host reference
// is fixed at creation and cannot be reassigned.
type PropertyUpdate struct {
	Name             string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description      string `json:"description,omitempty" validate:"omitempty"`
	Location         string `json:"location,omitempty" validate:"omitempty,max=255"`
	NightlyRateCents *int64 `json:"nightly_rate_cents,omitempty" validate:"omitempty,gt=0"`
}

// PropertySummary is the availability-query projection: whether the asked
// range is free plus enough context to render the answer.
type PropertySummary struct {
	PropertyID   string `json:"property_id"`
	PropertyName string `json:"property_name"`
	Available    bool   `json:"available"`
}
