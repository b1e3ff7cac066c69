// Package version implements the catalog's version and dependency algebra:
// dotted-integer versions, constraint parsing, and satisfaction checks over
// the installed set.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered sequence of non-negative integers, e.g. 1.2.0.
// Comparison is lexicographic; a longer sequence is greater than its prefix.
type Version []int

// Parse parses a dotted version string like "0.243.1". Empty components
// ("1..2") and non-numeric components ("1.6.3a") are rejected.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid version %q: empty component", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: component %q is not a number", s, p)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid version %q: negative component %q", s, p)
		}
		v = append(v, n)
	}
	return v, nil
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	for i := 0; i < len(v) && i < len(other); i++ {
		switch {
		case v[i] < other[i]:
			return -1
		case v[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(v) < len(other):
		return -1
	case len(v) > len(other):
		return 1
	}
	return 0
}

// String renders the version back to its dotted form.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
