package match

import "testing"

func TestExtract(t *testing.T) {
	cases := []struct {
		name    string
		trigger string
		text    string
		want    string
		wantOK  bool
	}{
		{"basic", "!define", "please !define serendipity now", "serendipity", true},
		{"at start", "!define", "!define ochre", "ochre", true},
		{"case insensitive trigger", "!define", "!DEFINE petrichor", "petrichor", true},
		{"uppercase body", "!define", "PLEASE !Define Sonder", "Sonder", true},
		{"no trigger", "!define", "what does serendipity mean", "", false},
		{"trigger without query", "!define", "just !define", "", false},
		{"trigger inside word", "define", "undefined thing", "", false},
		{"bare trigger at boundary", "define", "please define thing", "thing", true},
		{"punctuation before trigger", "!define", "hey, !define quay", "quay", true},
		{"extra whitespace", "!define", "!define    lagom", "lagom", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := New(c.trigger)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := m.Extract(c.text)
			if ok != c.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", c.text, ok, c.wantOK)
			}
			if got != c.want {
				t.Errorf("Extract(%q) = %q, want %q", c.text, got, c.want)
			}
		})
	}
}

func TestNewRejectsEmptyTrigger(t *testing.T) {
	if _, err := New("   "); err == nil {
		t.Error("expected error for blank trigger phrase")
	}
}
