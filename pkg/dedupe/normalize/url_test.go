package normalize

import "testing"

func TestURL_CanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and www stripped", "https://www.Example.com/Page/", "example.com/page"},
		{"query and fragment stripped", "http://example.com/page?utm_source=x#frag", "example.com/page"},
		{"trailing slash stripped", "https://example.com/a/b/", "example.com/a/b"},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", "youtube.com/watch?v=dqw4w9wgxcq"},
		{"youtube embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "youtube.com/watch?v=dqw4w9wgxcq"},
		{"youtube watch with extra params", "https://youtube.com/watch?v=dQw4w9WgXcQ&list=PL1&index=2", "youtube.com/watch?v=dqw4w9wgxcq"},
		{"youtube shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "youtube.com/watch?v=dqw4w9wgxcq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := URL(tt.in)
			if got != tt.want {
				t.Fatalf("URL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.Example.com/Page/",
		"",
		"HTTPS://DE.WIKIPEDIA.ORG/wiki/Islam",
		"https://youtu.be/dQw4w9WgXcQ?t=10",
	}
	for _, in := range inputs {
		once := URL(in)
		twice := URL(once)
		if once != twice {
			t.Fatalf("URL not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestURLExact_ScenarioA(t *testing.T) {
	source := "https://de.wikipedia.org/wiki/Islam"
	candidate := "HTTPS://DE.WIKIPEDIA.ORG/wiki/Islam"
	if !URLExact(source, candidate) {
		t.Fatalf("expected URL-exact match between %q and %q", source, candidate)
	}
}

func TestURLExact_EmptyNeverMatches(t *testing.T) {
	if URLExact("", "") {
		t.Fatalf("empty string must never be URL-exact")
	}
}
