package services

// ApplyFloored applies a signed delta to a balance, clamping the result at
// zero. It returns the new value and the delta actually applied, which for
// deductions may be smaller in magnitude than requested.
//
// Gifting and redemption use validated debits that reject outright instead;
// flooring is reserved for administrative sweeps where partial application is
// the intended behavior.
func ApplyFloored(current, delta int) (newValue, actualDelta int) {
	newValue = current + delta
	if newValue < 0 {
		newValue = 0
	}
	return newValue, newValue - current
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
