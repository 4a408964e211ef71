package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCents renders an int64 cent amount as a decimal string with two
// fraction digits, the only money representation exposed on the wire.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseCents parses a two-fraction-digit decimal string into cents. Plain
// integers are accepted as whole currency units.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, found := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := units * 100
	if found {
		if len(frac) != 2 {
			return 0, fmt.Errorf("amount %q must have two fraction digits", s)
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents += f
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}
