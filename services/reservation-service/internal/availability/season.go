package availability

import (
	"fmt"
	"time"
)

// Season selects which opening-hours grid applies to a calendar date.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSummer Season = "summer"
)

// SeasonTable maps calendar months to the summer season; every other month
// resolves to winter. The municipal ordinance moved the boundary once already,
// so the table is configuration, not a constant baked into the resolver.
type SeasonTable struct {
	summer [13]bool // indexed by time.Month (1..12)
}

// NewSeasonTable builds a table from the months that count as summer.
func NewSeasonTable(summerMonths ...time.Month) SeasonTable {
	var t SeasonTable
	for _, m := range summerMonths {
		if m >= time.January && m <= time.December {
			t.summer[m] = true
		}
	}
	return t
}

// DefaultSeasons is the table in force at the town hall: April through
// September is summer, the rest is winter.
func DefaultSeasons() SeasonTable {
	return NewSeasonTable(time.April, time.May, time.June, time.July, time.August, time.September)
}

// Resolve returns the season for a date. Total over all valid dates; only the
// month component matters.
func (t SeasonTable) Resolve(date time.Time) Season {
	if t.summer[date.Month()] {
		return SeasonSummer
	}
	return SeasonWinter
}

// OpeningHours returns the hour-label grid for a date, ascending by one hour
// with no gaps. Winter runs "08:00" through "22:00" (15 labels), summer
// "07:00" through "24:00" (18 labels, "24:00" meaning end of day). The last
// label is the closing fence: it is a valid end time but never a start time.
func (t SeasonTable) OpeningHours(date time.Time) []string {
	first, last := 8, 22
	if t.Resolve(date) == SeasonSummer {
		first, last = 7, 24
	}
	grid := make([]string, 0, last-first+1)
	for h := first; h <= last; h++ {
		grid = append(grid, HourLabel(h))
	}
	return grid
}

// StartHours drops the closing fence from a grid, leaving the labels that are
// offered as reservation start times.
func StartHours(grid []string) []string {
	if len(grid) == 0 {
		return nil
	}
	return grid[:len(grid)-1]
}

// HourLabel formats a whole hour as the canonical "HH:00" label.
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// labelHour extracts the hour component of a well-formed "HH:MM" label.
// Malformed labels are a caller contract violation and map to 0.
func labelHour(label string) int {
	h := 0
	for i := 0; i < len(label) && label[i] != ':'; i++ {
		c := label[i]
		if c < '0' || c > '9' {
			return 0
		}
		h = h*10 + int(c-'0')
	}
	return h
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
