package model

import "time"

// Kind is the reservation family; it decides which validation and pricing
// rules apply. Sports reservations go through the availability engine,
// gym and pool entries are admission-style and do not block a slot grid.
type Kind string

const (
	KindSports Kind = "deportiva"
	KindGym    Kind = "gimnasio"
	KindPool   Kind = "piscina"
)

type Reservation struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	DNI       string
	Facility  string
	Kind      Kind
	Date      time.Time // calendar day of the reservation
	StartHour string    // "HH:00"
	EndHour   string    // "HH:00", may be empty when Hours is set
	Hours     int
	Price     float64
	Resident  bool // empadronado in the municipality
	Lighting  bool // court floodlights requested
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
