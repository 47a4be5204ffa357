package models

import (
	"testing"
	"time"
)

func TestValidSchedule(t *testing.T) {
	cases := []struct {
		name  string
		date  string
		start string
		end   string
		want  bool
	}{
		{"valid", "2026-09-01", "10:00", "11:00", true},
		{"end before start", "2026-09-01", "11:00", "10:00", false},
		{"zero length", "2026-09-01", "10:00", "10:00", false},
		{"bad date", "01-09-2026", "10:00", "11:00", false},
		{"bad start", "2026-09-01", "10am", "11:00", false},
		{"bad end", "2026-09-01", "10:00", "", false},
	}
	for _, tc := range cases {
		if got := ValidSchedule(tc.date, tc.start, tc.end); got != tc.want {
			t.Fatalf("%s: ValidSchedule(%q, %q, %q) = %v, want %v", tc.name, tc.date, tc.start, tc.end, got, tc.want)
		}
	}
}

func TestStartedBefore(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s := Session{Date: "2026-09-01", StartTime: "10:00"}
	if !s.StartedBefore(now) {
		t.Fatalf("session starting at 10:00 should have started by noon")
	}

	s = Session{Date: "2026-09-01", StartTime: "14:00"}
	if s.StartedBefore(now) {
		t.Fatalf("session starting at 14:00 should not have started by noon")
	}

	// Unparseable schedules must not block completion.
	s = Session{Date: "garbage", StartTime: "10:00"}
	if !s.StartedBefore(now) {
		t.Fatalf("unparseable schedule should count as started")
	}
}

func TestBookable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	s := Session{State: SessionAvailable}
	if !s.Bookable(now) {
		t.Fatalf("available session should be bookable")
	}

	s = Session{State: SessionPendingPayment, HoldExpiresAt: &future}
	if s.Bookable(now) {
		t.Fatalf("live hold should not be bookable")
	}

	s = Session{State: SessionPendingPayment, HoldExpiresAt: &past}
	if !s.Bookable(now) {
		t.Fatalf("expired hold should be bookable again")
	}

	s = Session{State: SessionBooked}
	if s.Bookable(now) {
		t.Fatalf("booked session should not be bookable")
	}
}
