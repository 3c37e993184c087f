package model

// BookableOption is one choice offered to a customer: a date for
// day-granularity resources, a (date, slot) pair for slot granularity.
// Interval is the exact range a booking of this option would occupy.
type BookableOption struct {
	ResourceID string   `json:"resource_id"`
	Date       string   `json:"date"`
	Slot       string   `json:"slot,omitempty"`
	Interval   Interval `json:"interval"`
}
