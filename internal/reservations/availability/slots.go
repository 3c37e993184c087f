package availability

import (
	"time"

	"voyago/pkg/model"
)

const dateLayout = "2006-01-02"

// Options expands the resource's operating calendar over [rangeStart,
// rangeEnd), minus the active intervals, into the bookable options shown to
// a customer. Calendar days are walked in the resource's time zone, so a
// "day" is a local civil day and slot templates resolve to local wall-clock
// times. Ordering is ascending by date, then by slot-template order within a
// date. The function is pure: re-invoking with the same inputs reproduces
// the same sequence.
func Options(resource *model.Resource, rangeStart, rangeEnd time.Time, active []model.Interval) []model.BookableOption {
	if !rangeEnd.After(rangeStart) {
		return nil
	}

	loc := resource.Location()
	var options []model.BookableOption
	for date := model.DayInterval(rangeStart.In(loc)).Start; date.Before(rangeEnd); date = date.AddDate(0, 0, 1) {
		if !resource.OperatesOn(date) {
			continue
		}

		switch resource.Granularity {
		case model.GranularitySlot:
			options = append(options, slotOptions(resource, date, rangeStart, rangeEnd, active)...)
		default:
			iv := model.DayInterval(date)
			if iv.Start.Before(rangeStart) || overlapsAny(iv, active) {
				continue
			}
			options = append(options, model.BookableOption{
				ResourceID: resource.ID,
				Date:       date.Format(dateLayout),
				Interval:   iv,
			})
		}
	}
	return options
}

func slotOptions(resource *model.Resource, date, rangeStart, rangeEnd time.Time, active []model.Interval) []model.BookableOption {
	var options []model.BookableOption
	for i, label := range resource.SlotTemplates {
		iv, ok := SlotInterval(resource, date, i)
		if !ok {
			continue
		}
		if iv.Start.Before(rangeStart) || !iv.Start.Before(rangeEnd) {
			continue
		}
		if overlapsAny(iv, active) {
			continue
		}
		options = append(options, model.BookableOption{
			ResourceID: resource.ID,
			Date:       date.Format(dateLayout),
			Slot:       label,
			Interval:   iv,
		})
	}
	return options
}

// SlotInterval resolves template slot i on the calendar day containing date,
// in the resource's time zone, to its occupied interval: the slot runs until
// the next template slot, or until the resource's end-of-day (the following
// midnight when unconfigured).
func SlotInterval(resource *model.Resource, date time.Time, i int) (model.Interval, bool) {
	if i < 0 || i >= len(resource.SlotTemplates) {
		return model.Interval{}, false
	}

	day := model.DayInterval(date.In(resource.Location()))
	start, ok := clockOn(day.Start, resource.SlotTemplates[i])
	if !ok {
		return model.Interval{}, false
	}

	end := day.End
	if i+1 < len(resource.SlotTemplates) {
		if next, ok := clockOn(day.Start, resource.SlotTemplates[i+1]); ok {
			end = next
		}
	} else if resource.EndOfDay != "" {
		if eod, ok := clockOn(day.Start, resource.EndOfDay); ok && eod.After(start) {
			end = eod
		}
	}

	if !end.After(start) {
		return model.Interval{}, false
	}
	return model.Interval{Start: start, End: end}, true
}

// clockOn anchors an HH:MM template label on the civil day starting at day,
// in day's location.
func clockOn(day time.Time, label string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", label)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), true
}

func overlapsAny(iv model.Interval, active []model.Interval) bool {
	for _, busy := range active {
		if iv.Overlaps(busy) {
			return true
		}
		// Active intervals arrive sorted by start; nothing later can reach back.
		if !busy.Start.Before(iv.End) {
			break
		}
	}
	return false
}
