package channel

import "math"

// TemperatureState tracks a thermostat or sensor reading together with the
// precision it was last reported at. Velbus delivers temperature over two
// independent streams at different resolutions (a coarse status push and a
// high-precision sensor push); naively overwriting one with the other loses
// bits whenever the coarse stream repeats a value the fine stream already
// refined. Update implements the reconciliation contract literally: a new
// reading that merely restates the already-known value (once rounded to its
// own resolution) changes nothing, and a new reading that is exactly one
// step below the restated value is recognized as "no change happened, the
// bus just re-quantized": the stored value becomes the restated value minus
// the stored (finer) precision, and the finer precision is kept.
type TemperatureState struct {
	Current   float64
	Precision float64
	set       bool
}

// Update folds in a newly received (value, precision) pair.
func (t *TemperatureState) Update(value, precision float64) {
	if !t.set {
		t.Current, t.Precision, t.set = value, precision, true
		return
	}
	truncatedCurrent := math.Floor(t.Current/precision) * precision
	switch {
	case value == truncatedCurrent:
		// The new reading restates what is already known at its own
		// resolution; keep the finer stored value and precision.
	case value == truncatedCurrent-precision && t.Precision < precision:
		t.Current = truncatedCurrent - t.Precision
	default:
		t.Current = value
		t.Precision = precision
	}
}
