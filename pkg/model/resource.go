package model

import (
	"time"
)

const (
	GranularityDay  = "day"
	GranularitySlot = "slot"
)

const (
	KindCar  = "car"
	KindTour = "tour"
)

// Resource is a bookable entity of the marketplace: a rental car booked by
// the calendar day, or a tour booked by time slot.
type Resource struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Kind          string    `json:"kind" bson:"kind" validate:"required,oneof=car tour"`
	Granularity   string    `json:"granularity" bson:"granularity" validate:"required,oneof=day slot"`
	OperatingDays []string  `json:"operating_days" bson:"operating_days" validate:"required,min=1,max=7,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	SlotTemplates []string  `json:"slot_templates,omitempty" bson:"slot_templates" validate:"omitempty,max=48,dive,slot_time"`
	EndOfDay      string    `json:"end_of_day,omitempty" bson:"end_of_day" validate:"omitempty,slot_time"`
	TimeZone      string    `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ResourceUpdate struct {
	Name          string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Kind          string    `json:"kind,omitempty" validate:"omitempty,oneof=car tour"`
	Granularity   string    `json:"granularity,omitempty" validate:"omitempty,oneof=day slot"`
	OperatingDays []string  `json:"operating_days,omitempty" validate:"omitempty,min=1,max=7,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	SlotTemplates *[]string `json:"slot_templates,omitempty" validate:"omitempty,max=48,dive,slot_time"`
	EndOfDay      string    `json:"end_of_day,omitempty" validate:"omitempty,slot_time"`
	TimeZone      string    `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

// Location resolves the resource's IANA time zone. Resources with no zone
// configured, or a zone the host cannot load, fall back to UTC.
func (r *Resource) Location() *time.Location {
	if r.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OperatesOn reports whether the resource is offered on the weekday of the
// given date.
func (r *Resource) OperatesOn(date time.Time) bool {
	weekday := date.Weekday().String()
	for _, d := range r.OperatingDays {
		if d == weekday {
			return true
		}
	}
	return false
}
