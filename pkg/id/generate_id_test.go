package id

import (
	"regexp"
	"testing"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestNewID32_Format(t *testing.T) {
	got := NewID32()
	if !reHex32.MatchString(got) {
		t.Fatalf("NewID32() = %q, want 32 lowercase hex chars", got)
	}
}

func TestNewID32_Unique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		v := NewID32()
		if seen[v] {
			t.Fatalf("duplicate id after %d draws: %s", i, v)
		}
		seen[v] = true
	}
}
