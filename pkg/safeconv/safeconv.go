// Package safeconv provides integer conversions that detect overflow instead
// of wrapping.
package safeconv

import "math"

// IntToInt32 converts v to int32. The second result is false when v does not
// fit.
func IntToInt32(v int) (int32, bool) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}

	return int32(v), true
}

// MustIntToInt32 converts v to int32 and panics when it does not fit.
// Use only when overflow is logically impossible.
func MustIntToInt32(v int) int32 {
	converted, ok := IntToInt32(v)
	if !ok {
		panic("safeconv: int to int32 out of bounds")
	}

	return converted
}
