package handlers

import (
	"testing"
	"time"

	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/availability"
)

func testHandler() *ReservationHandler {
	fixed := time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC)
	return NewReservationHandler(nil, nil, nil, availability.DefaultSeasons(), func() time.Time { return fixed })
}

func TestNormalizeIntervalDerivesEnd(t *testing.T) {
	h := testHandler()
	winterDay := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	start, end, hours, ok := h.normalizeInterval(winterDay, "10:00", "", 2)
	if !ok {
		t.Fatal("expected interval to normalize")
	}
	if start != "10:00" || end != "12:00" || hours != 2 {
		t.Fatalf("got %s-%s (%dh)", start, end, hours)
	}
}

func TestNormalizeIntervalDerivesHours(t *testing.T) {
	h := testHandler()
	winterDay := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	_, _, hours, ok := h.normalizeInterval(winterDay, "10:00", "13:00", 0)
	if !ok || hours != 3 {
		t.Fatalf("expected 3 hours, got %d (ok=%v)", hours, ok)
	}
}

func TestNormalizeIntervalRejectsClosingFenceStart(t *testing.T) {
	h := testHandler()
	winterDay := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	if _, _, _, ok := h.normalizeInterval(winterDay, "22:00", "", 1); ok {
		t.Fatal("the closing fence must not be a valid start hour")
	}
	// The hour before the fence is the last valid start.
	if _, end, _, ok := h.normalizeInterval(winterDay, "21:00", "", 1); !ok || end != "22:00" {
		t.Fatalf("21:00-22:00 should be valid, got end=%s ok=%v", end, ok)
	}
}

func TestNormalizeIntervalOutsideOpeningHours(t *testing.T) {
	h := testHandler()
	winterDay := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	summerDay := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)

	if _, _, _, ok := h.normalizeInterval(winterDay, "07:00", "", 1); ok {
		t.Fatal("07:00 is outside the winter grid")
	}
	if _, _, _, ok := h.normalizeInterval(summerDay, "07:00", "", 1); !ok {
		t.Fatal("07:00 is a valid summer start")
	}
	if _, _, _, ok := h.normalizeInterval(winterDay, "20:00", "", 5); ok {
		t.Fatal("an interval running past closing must be rejected")
	}
	if _, _, _, ok := h.normalizeInterval(winterDay, "12:00", "10:00", 0); ok {
		t.Fatal("end before start must be rejected")
	}
}
