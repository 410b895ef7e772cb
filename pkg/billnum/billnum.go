// Package billnum derives human-readable bill numbers.
//
// A bill number is a letter prefix followed by a zero-padded 4-digit
// counter: A0001 .. A9999, B0001 .. Z9999, AA0001 and so on. The next
// number is derived from the most recently persisted bill, so the
// sequence survives restarts without a central counter record.
// Uniqueness is best-effort; the bill store enforces it with a unique
// index and callers retry on conflict.
package billnum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// First is the number assigned when no bill exists yet.
	First = "A0001"

	suffixDigits = 4
	suffixMax    = 9999
)

var numberPattern = regexp.MustCompile(`^([A-Z]+)([0-9]{4})$`)

// Valid reports whether s is a well-formed bill number.
func Valid(s string) bool {
	return numberPattern.MatchString(s)
}

// Parse splits a bill number into its letter prefix and numeric suffix.
func Parse(s string) (prefix string, suffix int, err error) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, fmt.Errorf("malformed bill number %q", s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("parse suffix of %q: %w", s, err)
	}
	return m[1], n, nil
}

// Next returns the bill number that follows last. An empty last means
// no bill has been persisted yet and the sequence starts at First.
func Next(last string) (string, error) {
	if last == "" {
		return First, nil
	}

	prefix, suffix, err := Parse(last)
	if err != nil {
		return "", err
	}

	if suffix < suffixMax {
		return format(prefix, suffix+1), nil
	}

	// Counter exhausted: reset to 1 and advance the letter prefix.
	return format(carry(prefix), 1), nil
}

// carry advances the prefix odometer-style: the last letter increments,
// Z resets and carries into the next-more-significant letter, and a
// carry past the first letter grows the prefix (Z -> AA).
func carry(prefix string) string {
	letters := []byte(prefix)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i] < 'Z' {
			letters[i]++
			return string(letters)
		}
		letters[i] = 'A'
	}
	return "A" + string(letters)
}

func format(prefix string, suffix int) string {
	var b strings.Builder
	b.WriteString(prefix)
	fmt.Fprintf(&b, "%0*d", suffixDigits, suffix)
	return b.String()
}
