package billnum

import (
	"testing"
)

func TestNext(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", "A0001"},
		{"A0001", "A0002"},
		{"A0042", "A0043"},
		{"A9999", "B0001"},
		{"M9999", "N0001"},
		{"Z9999", "AA0001"},
		{"AA9999", "AB0001"},
		{"AZ9999", "BA0001"},
		{"ZZ9999", "AAA0001"},
	}

	for _, tc := range cases {
		got, err := Next(tc.last)
		if err != nil {
			t.Fatalf("Next(%q): unexpected error: %v", tc.last, err)
		}
		if got != tc.want {
			t.Errorf("Next(%q) = %q, want %q", tc.last, got, tc.want)
		}
	}
}

func TestNextRejectsMalformed(t *testing.T) {
	for _, last := range []string{"0001", "A1", "a0001", "A00001", "A-0001", "1234"} {
		if _, err := Next(last); err == nil {
			t.Errorf("Next(%q): expected error, got none", last)
		}
	}
}

func TestParse(t *testing.T) {
	prefix, suffix, err := Parse("AB0420")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefix != "AB" || suffix != 420 {
		t.Errorf("Parse(AB0420) = %q, %d", prefix, suffix)
	}
}

func TestValid(t *testing.T) {
	if !Valid("A0001") || !Valid("ZZ9999") {
		t.Error("expected well-formed numbers to validate")
	}
	if Valid("") || Valid("A001") || Valid("A00010") {
		t.Error("expected malformed numbers to be rejected")
	}
}

func TestSequenceIsStrictlyIncreasing(t *testing.T) {
	// Walk across a counter rollover and check ordering under
	// prefix-length-then-lexicographic-then-numeric comparison.
	last := "A9995"
	for i := 0; i < 10; i++ {
		next, err := Next(last)
		if err != nil {
			t.Fatalf("unexpected error at %q: %v", last, err)
		}
		if !less(last, next) {
			t.Fatalf("sequence not increasing: %q -> %q", last, next)
		}
		last = next
	}
}

func less(a, b string) bool {
	ap, an, _ := Parse(a)
	bp, bn, _ := Parse(b)
	if len(ap) != len(bp) {
		return len(ap) < len(bp)
	}
	if ap != bp {
		return ap < bp
	}
	return an < bn
}
