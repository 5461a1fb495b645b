package handlers

import "testing"

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestNormalizeResident(t *testing.T) {
	cases := map[string]string{
		"":               "no-local",
		"no-local":       "no-local",
		"local":          "local",
		"jubilado-local": "jubilado-local",
	}
	for in, want := range cases {
		got, ok := normalizeResident(in)
		if !ok || got != want {
			t.Fatalf("normalizeResident(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := normalizeResident("extranjero"); ok {
		t.Fatal("unknown resident category must be rejected")
	}
}
