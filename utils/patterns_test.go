package utils

import "testing"

func TestNameMatcher(t *testing.T) {
	m := NewNameMatcher("*.txt")
	if !m.Match("/data/a.txt") {
		t.Fatal("expected *.txt to match a.txt")
	}
	if m.Match("/data/a.log") {
		t.Fatal("unexpected match for a.log")
	}
	// The glob applies to the base name, not the directory.
	if m.Match("/data.txt/binary") {
		t.Fatal("pattern must not match against the directory part")
	}
}

func TestNameMatcherDefaults(t *testing.T) {
	if !NewNameMatcher("").Match("/anything/at/all") {
		t.Fatal("empty pattern should match everything")
	}
	if !NewNameMatcher("*").Match("noext") {
		t.Fatal("* should match everything")
	}
}

func TestNameMatcherInvalidPattern(t *testing.T) {
	m := NewNameMatcher("[unclosed")
	if m.Match("anything") {
		t.Fatal("invalid pattern should match nothing")
	}
}
