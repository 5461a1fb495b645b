package availability

import "time"

// Slot is the status of one bookable hour within a day's grid.
type Slot struct {
	Hour      string
	Past      bool
	Reserved  bool
	Available bool
	Facility  string // occupying facility, set only in whole-venue mode
}

// SlotStatuses derives the status of every bookable hour of date's grid
// (the closing fence is excluded). A non-empty facility narrows obstacle
// checks to that facility; when empty, all bookings obstruct and each
// reserved slot reports the first booking that occupies it. Reserved and
// past are computed with the same predicates the booking path uses, so the
// grid and the submission check can never disagree.
func (t SeasonTable) SlotStatuses(date time.Time, bookings []Booking, now time.Time, facility string) []Slot {
	grid := t.OpeningHours(date)
	slots := make([]Slot, 0, len(grid)-1)
	for i := 0; i < len(grid)-1; i++ {
		hour, next := grid[i], grid[i+1]

		past := IsPast(date, hour, now)
		obstacle, reserved := firstObstacle(date, hour, next, bookings, facility)

		slot := Slot{
			Hour:      hour,
			Past:      past,
			Reserved:  reserved,
			Available: !past && !reserved,
		}
		if reserved && facility == "" {
			slot.Facility = obstacle.Facility
		}
		slots = append(slots, slot)
	}
	return slots
}
