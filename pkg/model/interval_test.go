package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{
			name: "disjoint",
			a:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)},
			b:    Interval{Start: date(2024, 5, 3), End: date(2024, 5, 4)},
			want: false,
		},
		{
			name: "adjacent half-open boundary is not a conflict",
			a:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)},
			b:    Interval{Start: date(2024, 5, 2), End: date(2024, 5, 3)},
			want: false,
		},
		{
			name: "partial overlap",
			a:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 3)},
			b:    Interval{Start: date(2024, 5, 2), End: date(2024, 5, 4)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 10)},
			b:    Interval{Start: date(2024, 5, 3), End: date(2024, 5, 4)},
			want: true,
		},
		{
			name: "identical",
			a:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)},
			b:    Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	iv := Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)}

	if !iv.Contains(iv.Start) {
		t.Error("expected interval to contain its start")
	}
	if iv.Contains(iv.End) {
		t.Error("expected interval not to contain its end (half-open)")
	}
	if !iv.Contains(date(2024, 5, 1).Add(12 * time.Hour)) {
		t.Error("expected interval to contain an interior point")
	}
	if iv.Contains(date(2024, 4, 30)) {
		t.Error("expected interval not to contain an earlier point")
	}
}

func TestInterval_Validate(t *testing.T) {
	zero := Interval{Start: date(2024, 5, 1), End: date(2024, 5, 1)}
	if err := zero.Validate(); err == nil {
		t.Error("expected zero-length interval to be invalid")
	}

	inverted := Interval{Start: date(2024, 5, 2), End: date(2024, 5, 1)}
	if err := inverted.Validate(); err == nil {
		t.Error("expected inverted interval to be invalid")
	}

	ok := Interval{Start: date(2024, 5, 1), End: date(2024, 5, 2)}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid interval, got %v", err)
	}
}

func TestDayInterval(t *testing.T) {
	iv := DayInterval(time.Date(2024, 5, 3, 15, 42, 0, 0, time.UTC))

	if !iv.Start.Equal(date(2024, 5, 3)) {
		t.Errorf("expected start at midnight, got %s", iv.Start)
	}
	if !iv.End.Equal(date(2024, 5, 4)) {
		t.Errorf("expected end at next midnight, got %s", iv.End)
	}
}

func TestDayInterval_RespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	iv := DayInterval(time.Date(2025, 6, 2, 15, 42, 0, 0, loc))

	// Midnight in EDT (UTC-4) is 04:00Z.
	if !iv.Start.Equal(time.Date(2025, 6, 2, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("expected start at local midnight, got %s", iv.Start.UTC())
	}
	if !iv.End.Equal(time.Date(2025, 6, 3, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("expected end at next local midnight, got %s", iv.End.UTC())
	}
}

func TestResource_Location(t *testing.T) {
	r := &Resource{TimeZone: "America/New_York"}
	if got := r.Location().String(); got != "America/New_York" {
		t.Errorf("expected America/New_York, got %s", got)
	}

	for _, zone := range []string{"", "Mars/Olympus"} {
		r := &Resource{TimeZone: zone}
		if got := r.Location(); got != time.UTC {
			t.Errorf("time zone %q: expected UTC fallback, got %s", zone, got)
		}
	}
}

func TestReservation_CanTransition(t *testing.T) {
	tests := []struct {
		from   string
		to     string
		want   bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		r := &Reservation{Status: tt.from}
		if got := r.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReservation_ExpiredAt(t *testing.T) {
	created := date(2024, 5, 1)
	hold := 15 * time.Minute

	pending := &Reservation{Status: StatusPending, CreatedAt: created}
	if pending.ExpiredAt(created.Add(10*time.Minute), hold) {
		t.Error("young pending hold must not be expired")
	}
	if !pending.ExpiredAt(created.Add(16*time.Minute), hold) {
		t.Error("old pending hold must be expired")
	}

	confirmed := &Reservation{Status: StatusConfirmed, CreatedAt: created}
	if confirmed.ExpiredAt(created.Add(24*time.Hour), hold) {
		t.Error("confirmed reservation must never expire")
	}
}
