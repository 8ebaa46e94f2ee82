package model

import "time"

// BookingLock is an advisory per-property mutex backed by a unique _id.
// Holding it serializes the availability check and insert for one property so
// two racing admissions cannot both observe a free range. Token identifies
// the acquisition that owns the lock: release is conditional on it, so a
// stalled request whose lock was reclaimed cannot delete its successor's
// lock. ExpiresAt lets the janitor reclaim locks left behind by crashed
// requests.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
