package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reservation binds a resource to an occupied interval. Only pending and
// confirmed reservations occupy their interval; a cancelled reservation
// frees it immediately but is kept as history, never deleted.
type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Interval   Interval  `json:"interval" bson:"interval" validate:"required"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (r *Reservation) Active() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// CanTransition reports whether the lifecycle state machine permits moving
// to the target status: pending -> {confirmed, cancelled},
// confirmed -> cancelled. Cancelled is absorbing.
func (r *Reservation) CanTransition(target string) bool {
	switch r.Status {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCancelled
	default:
		return false
	}
}

// ExpiredAt reports whether a pending hold created at CreatedAt has outlived
// the hold duration at the given instant. The comparison uses only the
// immutable creation timestamp, so concurrent expiry sweeps cannot expire a
// fresh hold.
func (r *Reservation) ExpiredAt(now time.Time, holdDuration time.Duration) bool {
	if r.Status != StatusPending {
		return false
	}
	return now.Sub(r.CreatedAt) > holdDuration
}
