package pricing

import "testing"

func TestCourtHourRate(t *testing.T) {
	cases := []struct {
		name     string
		court    Court
		resident Resident
		lighting Lighting
		want     float64
	}{
		{"local padel no lights is free", Padel, Local, NoLights, 0},
		{"local padel with lights", Padel, Local, WithLights, 4},
		{"non-local padel with lights", Padel, NonLocal, WithLights, 8},
		{"non-local football no lights", Football, NonLocal, NoLights, 15},
		{"non-local football with lights", Football, NonLocal, WithLights, 30},
		{"retired pays local court rate", Fronton, RetiredLocal, WithLights, 4},
	}
	for _, tc := range cases {
		got, err := CourtHourRate(tc.court, tc.resident, tc.lighting)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %.2f, want %.2f", tc.name, got, tc.want)
		}
	}
}

func TestCourtHourRateUnknownFacility(t *testing.T) {
	if _, err := CourtHourRate(Court(99), Local, NoLights); err == nil {
		t.Fatal("expected error for unknown court")
	}
}

func TestGymAndPoolRates(t *testing.T) {
	if got := GymDailyRate(RetiredLocal); got != 1.0 {
		t.Fatalf("retired gym daily: got %.2f", got)
	}
	if got := GymDailyRate(NonLocal); got != 2.5 {
		t.Fatalf("non-local gym daily: got %.2f", got)
	}
	if got := PoolEntryRate(Local); got != 1.5 {
		t.Fatalf("local pool entry: got %.2f", got)
	}
	if got := PoolEntryRate(NonLocal); got != 3.0 {
		t.Fatalf("non-local pool entry: got %.2f", got)
	}
}

func TestCourtFromFacility(t *testing.T) {
	if c, ok := CourtFromFacility("Pista de Pádel"); !ok || c != Padel {
		t.Fatalf("padel mapping failed: %v %v", c, ok)
	}
	if _, ok := CourtFromFacility("Sala de Plenos"); ok {
		t.Fatal("unknown facility must not map to a court")
	}
}
