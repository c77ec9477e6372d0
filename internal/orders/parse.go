package orders

import (
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseFloat reads the longest numeric prefix of s, ignoring leading
// whitespace. "12.5lots" is 12.5; "abc" and "" are not numbers.
func ParseFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimLeft(s, " \t\n\r"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optional returns a pointer to the parsed value, or nil when s is empty or
// not a number.
func optional(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, ok := ParseFloat(s)
	if !ok {
		return nil
	}
	return &v
}
