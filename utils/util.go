package utils

import (
	"strconv"

	"github.com/sanity-io/litter"
)

// Prettify renders any value as an indented literal for logs and tests.
func Prettify(i any) string {
	return litter.Sdump(i)
}

// FormatCoord formats a coordinate component at the fixed precision used by
// exported records (6 fractional digits).
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
