package availability

import "time"

// IsPast reports whether a slot starting at hourLabel on date is in the past
// relative to now. Whole days strictly before now's calendar day are past;
// days after are not. On now's own day the currently-running hour counts as
// past too (slot hour <= now's hour), so a slot can never start "right now".
func IsPast(date time.Time, hourLabel string, now time.Time) bool {
	y1, d1 := date.Year(), date.YearDay()
	y2, d2 := now.Year(), now.YearDay()
	if y1 != y2 {
		return y1 < y2
	}
	if d1 != d2 {
		return d1 < d2
	}
	return labelHour(hourLabel) <= now.Hour()
}

// FacilityAvailable reports whether [start, end) on date is free of
// non-cancelled bookings for one specific facility.
func FacilityAvailable(date time.Time, start, end string, bookings []Booking, facility string) bool {
	_, occupied := firstObstacle(date, start, end, bookings, facility)
	return !occupied
}

// VenueAvailable reports whether [start, end) on date is free across every
// facility: any non-cancelled booking that day is an obstacle. This is the
// "whole venue busy" mode used when no facility is singled out.
func VenueAvailable(date time.Time, start, end string, bookings []Booking) bool {
	_, occupied := firstObstacle(date, start, end, bookings, "")
	return !occupied
}

// firstObstacle scans bookings in input order and returns the first one whose
// occupied interval overlaps the candidate [start, end). An empty facility
// matches every facility. Bookings on another calendar day or with cancelled
// status never obstruct; touching endpoints (back-to-back) do not overlap.
func firstObstacle(date time.Time, start, end string, bookings []Booking, facility string) (Booking, bool) {
	cs, ce := labelHour(start), labelHour(end)
	for _, b := range bookings {
		if b.Status == StatusCancelled {
			continue
		}
		if !sameDay(b.Date, date) {
			continue
		}
		if facility != "" && b.Facility != facility {
			continue
		}
		bs, be := b.Interval()
		// Overlap iff the candidate starts inside [bs, be), ends inside
		// (bs, be], or fully contains the booking.
		if (cs >= bs && cs < be) || (ce > bs && ce <= be) || (cs <= bs && ce >= be) {
			return b, true
		}
	}
	return Booking{}, false
}
