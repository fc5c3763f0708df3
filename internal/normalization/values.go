package normalization

import (
	"strconv"
	"strings"
)

// ParseValue parses a formatted numeric field, stripping thousands
// separators. Invalid or missing values coerce to 0.
func ParseValue(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseBlock parses a block number field to a non-negative integer,
// stripping thousands separators. Invalid or negative values coerce to 0.
func ParseBlock(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	// Block numbers sometimes arrive float-formatted ("123456.0").
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
