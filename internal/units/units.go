// Package units provides shared constants and conversions for speed and
// acceleration units used across the engine and its tooling.
package units

// StandardGravity is the conventional value of g in m/s².
const StandardGravity = 9.80665

// Speed unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid speed unit values.
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Samples and the journal store speeds in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// MPS2ToG converts an acceleration in m/s² to multiples of standard gravity.
func MPS2ToG(a float64) float64 {
	return a / StandardGravity
}

// GToMPS2 converts an acceleration in g to m/s².
func GToMPS2(g float64) float64 {
	return g * StandardGravity
}
