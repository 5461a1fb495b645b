package availability

import "time"

// Status of a reservation as stored by the reservation workflow.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusConfirmed Status = "confirmada"
	StatusCancelled Status = "cancelada"
)

// Booking is the read-only view of an existing reservation that the engine
// consumes. The engine never creates, mutates or deletes bookings.
type Booking struct {
	Facility string
	Date     time.Time // calendar day; time-of-day ignored
	Start    string    // "HH:MM"
	End      string    // "HH:MM"; empty means Start + Hours
	Hours    int       // whole-hour duration, used only when End is empty
	Status   Status
}

// Interval returns the occupied hour range [start, end). When the booking
// carries no explicit end time it is derived from its duration.
func (b Booking) Interval() (start, end int) {
	start = labelHour(b.Start)
	if b.End != "" {
		return start, labelHour(b.End)
	}
	return start, start + b.Hours
}
