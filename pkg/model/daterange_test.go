package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange_RejectsEmptyAndInverted(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"end equals start", date(2026, 9, 10), date(2026, 9, 10)},
		{"end before start", date(2026, 9, 10), date(2026, 9, 8)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDateRange(tc.start, tc.end); err != ErrInvalidRange {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestNewDateRange_NormalizesToMidnightUTC(t *testing.T) {
	start := time.Date(2026, 9, 10, 15, 4, 5, 0, time.FixedZone("X", 3*3600))
	end := time.Date(2026, 9, 12, 23, 59, 59, 0, time.UTC)

	r, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start.Hour() != 0 || r.Start.Location() != time.UTC {
		t.Errorf("start not normalized: %v", r.Start)
	}
	if r.Nights() != 2 {
		t.Errorf("expected 2 nights, got %d", r.Nights())
	}
}

func TestNights_AtLeastOneForValidRanges(t *testing.T) {
	r, err := NewDateRange(date(2026, 9, 10), date(2026, 9, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Nights() < 1 {
		t.Errorf("valid range must have at least one night, got %d", r.Nights())
	}
}

func TestOverlaps(t *testing.T) {
	base, _ := NewDateRange(date(2026, 9, 10), date(2026, 9, 14))

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"self", date(2026, 9, 10), date(2026, 9, 14), true},
		{"contained", date(2026, 9, 11), date(2026, 9, 12), true},
		{"straddles start", date(2026, 9, 8), date(2026, 9, 11), true},
		{"straddles end", date(2026, 9, 13), date(2026, 9, 16), true},
		{"checkout on check-in day", date(2026, 9, 7), date(2026, 9, 10), false},
		{"check-in on checkout day", date(2026, 9, 14), date(2026, 9, 16), false},
		{"disjoint", date(2026, 9, 20), date(2026, 9, 22), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewDateRange(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := base.Overlaps(other); got != tc.want {
				t.Errorf("Overlaps(%s) = %v, want %v", tc.name, got, tc.want)
			}
			if got := other.Overlaps(base); got != tc.want {
				t.Errorf("Overlaps must be symmetric for %s", tc.name)
			}
		})
	}
}

func TestStayPredicates(t *testing.T) {
	today := date(2026, 9, 10)
	r, _ := NewDateRange(date(2026, 9, 12), date(2026, 9, 15))

	if !r.IsFuture(today) {
		t.Error("range starting in two days should be future")
	}
	if r.HasStarted(today) {
		t.Error("future range has not started")
	}
	if r.IsPast(today) {
		t.Error("future range is not past")
	}

	done, _ := NewDateRange(date(2026, 9, 1), date(2026, 9, 9))
	if !done.IsPast(today) {
		t.Error("range ending yesterday is past")
	}

	// Checkout today is not yet a completed stay.
	endsToday, _ := NewDateRange(date(2026, 9, 8), date(2026, 9, 10))
	if endsToday.IsPast(today) {
		t.Error("range ending today must not count as past")
	}
}

func TestBookingCanCancel(t *testing.T) {
	today := date(2026, 9, 10)
	future, _ := NewDateRange(date(2026, 9, 12), date(2026, 9, 15))
	started, _ := NewDateRange(date(2026, 9, 10), date(2026, 9, 15))

	cases := []struct {
		name   string
		status string
		rng    DateRange
		want   bool
	}{
		{"pending future", BookingPending, future, true},
		{"confirmed future", BookingConfirmed, future, true},
		{"canceled future", BookingCanceled, future, false},
		{"confirmed started today", BookingConfirmed, started, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Booking{Status: tc.status, DateRange: tc.rng}
			if got := b.CanCancel(today); got != tc.want {
				t.Errorf("CanCancel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBookingStayCompleted(t *testing.T) {
	today := date(2026, 9, 10)
	past, _ := NewDateRange(date(2026, 9, 1), date(2026, 9, 5))

	confirmed := &Booking{Status: BookingConfirmed, DateRange: past}
	if !confirmed.StayCompleted(today) {
		t.Error("confirmed booking with past checkout is a completed stay")
	}

	pending := &Booking{Status: BookingPending, DateRange: past}
	if pending.StayCompleted(today) {
		t.Error("pending booking never counts as completed stay")
	}
}
