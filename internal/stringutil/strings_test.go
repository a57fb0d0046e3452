package stringutil

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Enfermería ", "enfermeria"},
		{"PSICOLOGÍA", "psicologia"},
		{"Oferta General", "oferta general"},
		{"Maestría en Educación", "maestria en educacion"},
		{"", ""},
		{"   ", ""},
		{"Sí", "si"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripDiacritics(t *testing.T) {
	t.Parallel()

	if got := StripDiacritics("Educación Física"); got != "Educacion Fisica" {
		t.Errorf("got %q", got)
	}
	// ñ carries a combining tilde in NFD form, so it is flattened too;
	// heuristic matching only ever compares normalized text against
	// normalized keywords, so this is fine.
	if got := StripDiacritics("Diseño"); got != "Diseno" {
		t.Errorf("got %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"PSICOLOGÍA", "Psicología"},
		{"  derecho  ", "Derecho"},
		{"maestría en educación online", "Maestría En Educación Online"},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	t.Parallel()

	if !EqualFold("OFERTA GENERAL", "oferta general") {
		t.Error("expected case-insensitive match")
	}
	if !EqualFold("Sí", "si") {
		t.Error("expected accent-insensitive match")
	}
	if EqualFold("programa", "programas") {
		t.Error("distinct words must not match")
	}
}
