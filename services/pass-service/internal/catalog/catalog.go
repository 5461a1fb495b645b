package catalog

import (
	"errors"
	"time"
)

// Facility kinds a bono can cover.
const (
	KindGym  = "gimnasio"
	KindPool = "piscina"
)

// Gym pass types follow the municipal tariff sheet.
const (
	GymDaily     = "diaria"
	GymMonthly   = "mensual"
	GymQuarterly = "trimestral"
)

// Pool passes. The season pass covers the whole open-air season.
const (
	PoolMonthly = "bono-mensual"
	PoolSeason  = "bono-temporada"
)

// Resident categories, as carried on access tokens.
const (
	ResidentLocal        = "local"
	ResidentNonLocal     = "no-local"
	ResidentRetiredLocal = "jubilado-local"
)

var (
	ErrUnknownPass     = errors.New("unknown pass type")
	ErrUnknownResident = errors.New("unknown resident category")
)

var gymPrices = map[string]map[string]float64{
	ResidentRetiredLocal: {GymDaily: 1.0, GymMonthly: 6.0, GymQuarterly: 15.0},
	ResidentLocal:        {GymDaily: 2.0, GymMonthly: 9.0, GymQuarterly: 30.0},
	ResidentNonLocal:     {GymDaily: 2.5, GymMonthly: 12.0, GymQuarterly: 55.0},
}

// Pool passes have no retiree tariff; jubilado-local pays the local rate.
var poolPrices = map[string]map[string]float64{
	ResidentLocal:    {PoolMonthly: 25.0, PoolSeason: 60.0},
	ResidentNonLocal: {PoolMonthly: 50.0, PoolSeason: 100.0},
}

// Price returns the tariff for a pass of the given kind, type and resident
// category.
func Price(kind, passType, resident string) (float64, error) {
	switch kind {
	case KindGym:
		table, ok := gymPrices[resident]
		if !ok {
			return 0, ErrUnknownResident
		}
		price, ok := table[passType]
		if !ok {
			return 0, ErrUnknownPass
		}
		return price, nil
	case KindPool:
		if resident == ResidentRetiredLocal {
			resident = ResidentLocal
		}
		table, ok := poolPrices[resident]
		if !ok {
			return 0, ErrUnknownResident
		}
		price, ok := table[passType]
		if !ok {
			return 0, ErrUnknownPass
		}
		return price, nil
	default:
		return 0, ErrUnknownPass
	}
}

// ValidUntil derives the expiry of a pass starting at from. The pool season
// pass runs through the end of September regardless of purchase date.
func ValidUntil(passType string, from time.Time) (time.Time, error) {
	switch passType {
	case GymDaily:
		return from.AddDate(0, 0, 1), nil
	case GymMonthly, PoolMonthly:
		return from.AddDate(0, 1, 0), nil
	case GymQuarterly:
		return from.AddDate(0, 3, 0), nil
	case PoolSeason:
		return time.Date(from.Year(), time.September, 30, 23, 59, 59, 0, from.Location()), nil
	default:
		return time.Time{}, ErrUnknownPass
	}
}

// Valid reports whether the kind/type pair exists in the tariff sheet.
func Valid(kind, passType string) bool {
	switch kind {
	case KindGym:
		return passType == GymDaily || passType == GymMonthly || passType == GymQuarterly
	case KindPool:
		return passType == PoolMonthly || passType == PoolSeason
	default:
		return false
	}
}
