package availability

import (
	"testing"
	"time"
)

var testDay = time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC)

func confirmed(facility, start, end string) Booking {
	return Booking{Facility: facility, Date: testDay, Start: start, End: end, Status: StatusConfirmed}
}

func TestIsPastPriorAndFutureDays(t *testing.T) {
	now := time.Date(2025, time.March, 17, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC)

	for _, hour := range []string{"08:00", "12:00", "22:00"} {
		if !IsPast(yesterday, hour, now) {
			t.Fatalf("yesterday %s should be past", hour)
		}
		if IsPast(tomorrow, hour, now) {
			t.Fatalf("tomorrow %s should not be past", hour)
		}
	}

	// Year boundary: Dec 31 vs Jan 1.
	lastYear := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !IsPast(lastYear, "23:00", now) {
		t.Fatal("a day in the prior year should be past")
	}
}

func TestIsPastSameDayInclusiveHour(t *testing.T) {
	// The running hour itself is not offered for new starts.
	now := time.Date(2025, time.March, 17, 14, 30, 0, 0, time.UTC)
	today := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)

	for h := 8; h <= 14; h++ {
		if !IsPast(today, HourLabel(h), now) {
			t.Fatalf("hour %02d:00 should be past at 14:30", h)
		}
	}
	for h := 15; h <= 22; h++ {
		if IsPast(today, HourLabel(h), now) {
			t.Fatalf("hour %02d:00 should not be past at 14:30", h)
		}
	}
}

func TestFacilityAvailableEmptyBookings(t *testing.T) {
	if !FacilityAvailable(testDay, "10:00", "11:00", nil, "Pista de Pádel") {
		t.Fatal("empty booking list must always be available")
	}
	if !VenueAvailable(testDay, "10:00", "11:00", nil) {
		t.Fatal("empty booking list must always be available (venue mode)")
	}
}

func TestFacilityAvailableBackToBack(t *testing.T) {
	existing := []Booking{confirmed("Pista de Pádel", "10:00", "12:00")}

	if !FacilityAvailable(testDay, "12:00", "14:00", existing, "Pista de Pádel") {
		t.Fatal("booking starting exactly when another ends must be allowed")
	}
	if !FacilityAvailable(testDay, "08:00", "10:00", existing, "Pista de Pádel") {
		t.Fatal("booking ending exactly when another starts must be allowed")
	}
}

func TestFacilityAvailableOverlapCases(t *testing.T) {
	existing := []Booking{confirmed("Pista de Pádel", "10:00", "12:00")}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"starts inside", "11:00", "13:00", false},
		{"ends inside", "09:00", "11:00", false},
		{"identical", "10:00", "12:00", false},
		{"contains existing", "09:00", "13:00", false},
		{"contained by existing", "10:00", "11:00", false},
		{"before", "08:00", "09:00", true},
		{"after", "13:00", "14:00", true},
	}
	for _, tc := range cases {
		if got := FacilityAvailable(testDay, tc.start, tc.end, existing, "Pista de Pádel"); got != tc.want {
			t.Fatalf("%s: [%s,%s) got %v, want %v", tc.name, tc.start, tc.end, got, tc.want)
		}
	}
}

func TestFacilityAvailableContainsShortBooking(t *testing.T) {
	existing := []Booking{confirmed("Pista de Pádel", "10:00", "11:00")}
	if FacilityAvailable(testDay, "09:00", "13:00", existing, "Pista de Pádel") {
		t.Fatal("a candidate fully containing an existing booking must be rejected")
	}
}

func TestCancelledBookingNeverObstructs(t *testing.T) {
	cancelled := confirmed("Pista de Pádel", "10:00", "12:00")
	cancelled.Status = StatusCancelled

	if !FacilityAvailable(testDay, "10:00", "12:00", []Booking{cancelled}, "Pista de Pádel") {
		t.Fatal("cancelled bookings must not occupy slots")
	}
	if !VenueAvailable(testDay, "10:00", "12:00", []Booking{cancelled}) {
		t.Fatal("cancelled bookings must not occupy slots (venue mode)")
	}
}

func TestDurationDerivedEndTime(t *testing.T) {
	// No explicit end time: occupied interval is start + whole hours.
	existing := []Booking{{
		Facility: "Campo de Fútbol",
		Date:     testDay,
		Start:    "16:00",
		Hours:    2,
		Status:   StatusConfirmed,
	}}

	if FacilityAvailable(testDay, "17:00", "18:00", existing, "Campo de Fútbol") {
		t.Fatal("slot inside derived interval [16:00,18:00) should be occupied")
	}
	if !FacilityAvailable(testDay, "18:00", "19:00", existing, "Campo de Fútbol") {
		t.Fatal("slot right after derived interval should be free")
	}
}

func TestFacilityFilterIgnoresOtherFacilities(t *testing.T) {
	existing := []Booking{confirmed("Pista de Pádel", "10:00", "12:00")}

	if !FacilityAvailable(testDay, "10:00", "11:00", existing, "Campo de Fútbol") {
		t.Fatal("a different facility's booking must not obstruct a filtered check")
	}
	if VenueAvailable(testDay, "10:00", "11:00", existing) {
		t.Fatal("in venue mode every booking obstructs")
	}
}

func TestOtherDayBookingsIgnored(t *testing.T) {
	otherDay := confirmed("Pista de Pádel", "10:00", "12:00")
	otherDay.Date = testDay.AddDate(0, 0, 1)

	if !FacilityAvailable(testDay, "10:00", "11:00", []Booking{otherDay}, "Pista de Pádel") {
		t.Fatal("bookings on another calendar day must not obstruct")
	}
}

func TestPendingBookingObstructs(t *testing.T) {
	pending := confirmed("Pista de Pádel", "10:00", "12:00")
	pending.Status = StatusPending

	if FacilityAvailable(testDay, "10:00", "11:00", []Booking{pending}, "Pista de Pádel") {
		t.Fatal("pending bookings still occupy their slot")
	}
}
