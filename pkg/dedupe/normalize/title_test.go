package normalize

import "testing"

func TestTitle_StripsPublisherSuffix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wikipedia dash", "Islam - Wikipedia", "Islam"},
		{"klexikon pipe", "Mathematik | Klexikon", "Mathematik"},
		{"planet-schule paren", "Geschichte (planet-schule.de)", "Geschichte"},
		{"no suffix", "Photosynthese", "Photosynthese"},
		{"ampersand and whitespace", "Reading  &  Writing", "Reading Writing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.in)
			if got != tt.want {
				t.Fatalf("Title(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitle_Idempotent(t *testing.T) {
	inputs := []string{
		"Islam - Wikipedia",
		"",
		"Mathematik für Grundschüler",
		"A & B :: sofatutor",
	}
	for _, in := range inputs {
		once := Title(in)
		twice := Title(once)
		if once != twice {
			t.Fatalf("Title not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
