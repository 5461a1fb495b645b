package catalog

import (
	"testing"
	"time"
)

func TestGymPrices(t *testing.T) {
	cases := []struct {
		resident string
		passType string
		want     float64
	}{
		{ResidentRetiredLocal, GymDaily, 1.0},
		{ResidentRetiredLocal, GymMonthly, 6.0},
		{ResidentRetiredLocal, GymQuarterly, 15.0},
		{ResidentLocal, GymDaily, 2.0},
		{ResidentLocal, GymMonthly, 9.0},
		{ResidentLocal, GymQuarterly, 30.0},
		{ResidentNonLocal, GymDaily, 2.5},
		{ResidentNonLocal, GymMonthly, 12.0},
		{ResidentNonLocal, GymQuarterly, 55.0},
	}
	for _, tc := range cases {
		got, err := Price(KindGym, tc.passType, tc.resident)
		if err != nil {
			t.Fatalf("Price(gimnasio, %s, %s): %v", tc.passType, tc.resident, err)
		}
		if got != tc.want {
			t.Fatalf("Price(gimnasio, %s, %s) = %v, want %v", tc.passType, tc.resident, got, tc.want)
		}
	}
}

func TestPoolPrices(t *testing.T) {
	cases := []struct {
		resident string
		passType string
		want     float64
	}{
		{ResidentLocal, PoolMonthly, 25.0},
		{ResidentNonLocal, PoolMonthly, 50.0},
		{ResidentLocal, PoolSeason, 60.0},
		{ResidentNonLocal, PoolSeason, 100.0},
		// Retirees pay the local pool rate.
		{ResidentRetiredLocal, PoolMonthly, 25.0},
		{ResidentRetiredLocal, PoolSeason, 60.0},
	}
	for _, tc := range cases {
		got, err := Price(KindPool, tc.passType, tc.resident)
		if err != nil {
			t.Fatalf("Price(piscina, %s, %s): %v", tc.passType, tc.resident, err)
		}
		if got != tc.want {
			t.Fatalf("Price(piscina, %s, %s) = %v, want %v", tc.passType, tc.resident, got, tc.want)
		}
	}
}

func TestPriceUnknown(t *testing.T) {
	if _, err := Price(KindGym, "anual", ResidentLocal); err != ErrUnknownPass {
		t.Fatalf("expected ErrUnknownPass, got %v", err)
	}
	if _, err := Price(KindGym, GymDaily, "turista"); err != ErrUnknownResident {
		t.Fatalf("expected ErrUnknownResident, got %v", err)
	}
	if _, err := Price("sauna", GymDaily, ResidentLocal); err != ErrUnknownPass {
		t.Fatalf("expected ErrUnknownPass for unknown kind, got %v", err)
	}
}

func TestValidUntil(t *testing.T) {
	from := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	until, err := ValidUntil(GymMonthly, from)
	if err != nil || !until.Equal(from.AddDate(0, 1, 0)) {
		t.Fatalf("monthly expiry = %v (err %v)", until, err)
	}

	until, err = ValidUntil(GymQuarterly, from)
	if err != nil || !until.Equal(from.AddDate(0, 3, 0)) {
		t.Fatalf("quarterly expiry = %v (err %v)", until, err)
	}

	until, err = ValidUntil(PoolSeason, from)
	if err != nil {
		t.Fatalf("season expiry: %v", err)
	}
	if until.Month() != time.September || until.Day() != 30 || until.Year() != 2025 {
		t.Fatalf("season pass must run through September 30, got %v", until)
	}
}

func TestValid(t *testing.T) {
	if !Valid(KindGym, GymQuarterly) || !Valid(KindPool, PoolSeason) {
		t.Fatal("known pass types must validate")
	}
	if Valid(KindPool, GymQuarterly) || Valid(KindGym, PoolMonthly) {
		t.Fatal("pass types must not cross facility kinds")
	}
}
