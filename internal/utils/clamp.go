// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "math"

// ClampInt constrains n to [min, max].
func ClampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// ClampFloatToInt64 truncates f toward zero and constrains the result to
// [min, max]. The bounds are applied while still in float space: values at
// or beyond int64 range (including +/-Inf) land on the nearest bound instead
// of going through an out-of-range conversion. NaN collapses to min.
func ClampFloatToInt64(f float64, min, max int64) int64 {
	if math.IsNaN(f) {
		return min
	}
	if f < float64(min) {
		return min
	}
	if f > float64(max) {
		return max
	}
	return int64(math.Trunc(f))
}
