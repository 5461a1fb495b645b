package availability

import (
	"testing"
	"time"
)

func TestSlotStatusesExcludesClosingFence(t *testing.T) {
	seasons := DefaultSeasons()
	winterDay := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

	slots := seasons.SlotStatuses(winterDay, nil, now, "")
	if len(slots) != 14 {
		t.Fatalf("expected 14 bookable winter slots, got %d", len(slots))
	}
	if slots[0].Hour != "08:00" || slots[len(slots)-1].Hour != "21:00" {
		t.Fatalf("expected 08:00..21:00, got %s..%s", slots[0].Hour, slots[len(slots)-1].Hour)
	}
	for _, s := range slots {
		if !s.Available || s.Past || s.Reserved {
			t.Fatalf("slot %s of an empty future day should be available: %+v", s.Hour, s)
		}
	}
}

func TestSlotStatusesConsistentWithPredicates(t *testing.T) {
	seasons := DefaultSeasons()
	day := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{Facility: "Pista de Pádel", Date: day, Start: "12:00", End: "14:00", Status: StatusConfirmed},
		{Facility: "Gimnasio Municipal", Date: day, Start: "16:00", Hours: 1, Status: StatusPending},
		{Facility: "Frontón", Date: day, Start: "18:00", End: "19:00", Status: StatusCancelled},
	}

	grid := seasons.OpeningHours(day)
	slots := seasons.SlotStatuses(day, bookings, now, "")
	for i, s := range slots {
		next := grid[i+1]
		wantReserved := !VenueAvailable(day, s.Hour, next, bookings)
		wantPast := IsPast(day, s.Hour, now)
		if s.Reserved != wantReserved {
			t.Fatalf("slot %s reserved=%v, VenueAvailable says %v", s.Hour, s.Reserved, !wantReserved)
		}
		if s.Past != wantPast {
			t.Fatalf("slot %s past=%v, IsPast says %v", s.Hour, s.Past, wantPast)
		}
		if s.Available != (!s.Past && !s.Reserved) {
			t.Fatalf("slot %s availability must be !past && !reserved: %+v", s.Hour, s)
		}
	}
}

func TestSlotStatusesOccupyingFacility(t *testing.T) {
	seasons := DefaultSeasons()
	day := time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.November, 1, 8, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{Facility: "Pista de Pádel", Date: day, Start: "10:00", End: "12:00", Status: StatusConfirmed},
	}

	slots := seasons.SlotStatuses(day, bookings, now, "")
	for _, s := range slots {
		switch s.Hour {
		case "10:00", "11:00":
			if !s.Reserved || s.Facility != "Pista de Pádel" {
				t.Fatalf("slot %s should report the occupying facility: %+v", s.Hour, s)
			}
		default:
			if s.Reserved || s.Facility != "" {
				t.Fatalf("slot %s should be free with no facility: %+v", s.Hour, s)
			}
		}
	}

	// With a facility filter the occupying facility is not reported.
	filtered := seasons.SlotStatuses(day, bookings, now, "Pista de Pádel")
	for _, s := range filtered {
		if s.Facility != "" {
			t.Fatalf("filtered grid must not carry occupying facility: %+v", s)
		}
	}
}

func TestSlotStatusesWinterScenario(t *testing.T) {
	// End-to-end: winter weekday, Padel booked 10:00-12:00 confirmed.
	_ = DefaultSeasons()
	day := time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{Facility: "Pista de Pádel", Date: day, Start: "10:00", End: "12:00", Status: StatusConfirmed},
	}

	if FacilityAvailable(day, "10:00", "11:00", bookings, "Pista de Pádel") {
		t.Fatal("10:00-11:00 on the booked court must be rejected")
	}
	if !FacilityAvailable(day, "12:00", "13:00", bookings, "Pista de Pádel") {
		t.Fatal("12:00-13:00 right after the booking must be accepted")
	}
	if !FacilityAvailable(day, "10:00", "11:00", bookings, "Campo de Fútbol") {
		t.Fatal("another facility at 10:00 must be accepted with a facility filter")
	}
	if VenueAvailable(day, "10:00", "11:00", bookings) {
		t.Fatal("whole-venue mode must reject 10:00 while any facility is booked")
	}
}

func TestSlotStatusesPastDayAllPast(t *testing.T) {
	seasons := DefaultSeasons()
	day := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)

	for _, s := range seasons.SlotStatuses(day, nil, now, "") {
		if !s.Past || s.Available {
			t.Fatalf("every slot of a prior day must be past: %+v", s)
		}
	}
}
