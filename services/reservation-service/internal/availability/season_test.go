package availability

import (
	"testing"
	"time"
)

func TestResolveSeason(t *testing.T) {
	seasons := DefaultSeasons()

	winterMonths := []time.Month{time.January, time.February, time.March, time.October, time.November, time.December}
	for _, m := range winterMonths {
		date := time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC)
		if got := seasons.Resolve(date); got != SeasonWinter {
			t.Fatalf("expected winter for month %d, got %s", m, got)
		}
	}
	for m := time.April; m <= time.September; m++ {
		date := time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC)
		if got := seasons.Resolve(date); got != SeasonSummer {
			t.Fatalf("expected summer for month %d, got %s", m, got)
		}
	}
}

func TestResolveSeasonIgnoresTimeOfDay(t *testing.T) {
	seasons := DefaultSeasons()
	morning := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	night := time.Date(2025, time.July, 1, 23, 59, 59, 0, time.UTC)
	if seasons.Resolve(morning) != seasons.Resolve(night) {
		t.Fatal("season must depend on the month only")
	}
}

func TestResolveSeasonAlternateTable(t *testing.T) {
	// The other table seen in the wild: June through September.
	seasons := NewSeasonTable(time.June, time.July, time.August, time.September)
	may := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	if got := seasons.Resolve(may); got != SeasonWinter {
		t.Fatalf("expected winter for May under Jun-Sep table, got %s", got)
	}
	june := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	if got := seasons.Resolve(june); got != SeasonSummer {
		t.Fatalf("expected summer for June under Jun-Sep table, got %s", got)
	}
}

func TestOpeningHoursWinter(t *testing.T) {
	seasons := DefaultSeasons()
	date := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	grid := seasons.OpeningHours(date)
	if len(grid) != 15 {
		t.Fatalf("expected 15 winter labels, got %d", len(grid))
	}
	if grid[0] != "08:00" || grid[len(grid)-1] != "22:00" {
		t.Fatalf("expected 08:00..22:00, got %s..%s", grid[0], grid[len(grid)-1])
	}
	assertContiguous(t, grid)
}

func TestOpeningHoursSummer(t *testing.T) {
	seasons := DefaultSeasons()
	date := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)

	grid := seasons.OpeningHours(date)
	if len(grid) != 18 {
		t.Fatalf("expected 18 summer labels, got %d", len(grid))
	}
	if grid[0] != "07:00" || grid[len(grid)-1] != "24:00" {
		t.Fatalf("expected 07:00..24:00, got %s..%s", grid[0], grid[len(grid)-1])
	}
	assertContiguous(t, grid)
}

func TestOpeningHoursDeterministic(t *testing.T) {
	seasons := DefaultSeasons()
	date := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	a := seasons.OpeningHours(date)
	b := seasons.OpeningHours(date)
	if len(a) != len(b) {
		t.Fatalf("grid length changed between calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("grid not deterministic at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestStartHoursDropsClosingFence(t *testing.T) {
	seasons := DefaultSeasons()
	date := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	grid := seasons.OpeningHours(date)
	starts := StartHours(grid)
	if len(starts) != len(grid)-1 {
		t.Fatalf("expected %d start hours, got %d", len(grid)-1, len(starts))
	}
	if starts[len(starts)-1] != "21:00" {
		t.Fatalf("expected last winter start 21:00, got %s", starts[len(starts)-1])
	}
	if StartHours(nil) != nil {
		t.Fatal("StartHours of empty grid should be nil")
	}
}

func assertContiguous(t *testing.T, grid []string) {
	t.Helper()
	for i := 1; i < len(grid); i++ {
		if labelHour(grid[i]) != labelHour(grid[i-1])+1 {
			t.Fatalf("grid not contiguous at %d: %s after %s", i, grid[i], grid[i-1])
		}
	}
}
