package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrEmptyInterval = errors.New("interval end must be after start")

// Interval is a half-open time range [Start, End). A reservation ending at
// 17:00 does not conflict with one starting at 17:00.
type Interval struct {
	Start time.Time `json:"start" bson:"start" validate:"required"`
	End   time.Time `json:"end" bson:"end" validate:"required,gtfield=Start"`
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Contains(point time.Time) bool {
	return !point.Before(i.Start) && point.Before(i.End)
}

func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

func (i Interval) Validate() error {
	if !i.End.After(i.Start) {
		return ErrEmptyInterval
	}
	return nil
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// DayInterval returns the interval occupied by the calendar day containing
// date: [midnight, next midnight) in date's location. AddDate keeps the end
// aligned to the following midnight across DST transitions.
func DayInterval(date time.Time) Interval {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}
