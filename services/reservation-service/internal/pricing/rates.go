// Package pricing holds the municipal price tables. Rates are keyed by
// typed enums rather than concatenated strings ("local-sin-luz"), so an
// unknown combination is a compile-time or explicit-error condition instead
// of a silent zero from a map lookup.
package pricing

import "errors"

var ErrUnknownFacility = errors.New("unknown facility")

// Court identifies a bookable sports facility.
type Court int

const (
	Padel Court = iota
	Football
	FutsalCourt
	Fronton
)

// Resident is the empadronamiento category used by every table.
type Resident int

const (
	Local Resident = iota
	NonLocal
	RetiredLocal
)

// Lighting toggles the floodlight surcharge on outdoor courts.
type Lighting int

const (
	NoLights Lighting = iota
	WithLights
)

// sportRates is the per-hour court price in euros. Local residents without
// lights play for free.
var sportRates = map[Court]map[Resident]map[Lighting]float64{
	Padel: {
		Local:    {NoLights: 0, WithLights: 4},
		NonLocal: {NoLights: 4, WithLights: 8},
	},
	Football: {
		Local:    {NoLights: 0, WithLights: 10},
		NonLocal: {NoLights: 15, WithLights: 30},
	},
	FutsalCourt: {
		Local:    {NoLights: 0, WithLights: 4},
		NonLocal: {NoLights: 4, WithLights: 8},
	},
	Fronton: {
		Local:    {NoLights: 0, WithLights: 4},
		NonLocal: {NoLights: 4, WithLights: 8},
	},
}

// gymDaily is the single-day gym admission.
var gymDaily = map[Resident]float64{
	RetiredLocal: 1.0,
	Local:        2.0,
	NonLocal:     2.5,
}

// poolEntry is the single-swim pool admission. Local children under three
// are free and handled by the caller before reaching the table.
var poolEntry = map[Resident]float64{
	RetiredLocal: 1.5,
	Local:        1.5,
	NonLocal:     3.0,
}

// CourtHourRate returns the hourly rate for a court reservation.
func CourtHourRate(court Court, resident Resident, lighting Lighting) (float64, error) {
	perResident, ok := sportRates[court]
	if !ok {
		return 0, ErrUnknownFacility
	}
	r := resident
	if r == RetiredLocal {
		// Courts have no retiree tariff; retirees pay the local rate.
		r = Local
	}
	return perResident[r][lighting], nil
}

// GymDailyRate returns the one-day gym admission price.
func GymDailyRate(resident Resident) float64 {
	return gymDaily[resident]
}

// PoolEntryRate returns the single-entry pool price.
func PoolEntryRate(resident Resident) float64 {
	return poolEntry[resident]
}

// CourtFromFacility maps the facility names used by the frontend onto the
// typed court enum.
func CourtFromFacility(name string) (Court, bool) {
	switch name {
	case "Pista de Pádel":
		return Padel, true
	case "Campo de Fútbol":
		return Football, true
	case "Pista de Fútbol Sala":
		return FutsalCourt, true
	case "Frontón":
		return Fronton, true
	default:
		return 0, false
	}
}

// ParseResident maps the resident category carried on tokens
// ("local", "no-local", "jubilado-local") onto the enum.
func ParseResident(s string) Resident {
	switch s {
	case "local":
		return Local
	case "jubilado-local":
		return RetiredLocal
	default:
		return NonLocal
	}
}
