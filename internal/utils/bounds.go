package utils

// Clamp keeps v within [lo, hi]. Used to normalize form input, never to hide
// a server-side rejection.
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
