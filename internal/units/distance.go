// Package units provides shared constants and validation for distance units
package units

import (
	"fmt"
	"time"
)

// Unit constants
const (
	Meters      = "m"
	Centimeters = "cm"
	Inches      = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Centimeters, Inches}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, cm, in"
}

// ConvertDistance converts a distance from meters to the target units
// Database stores distances in meters
func ConvertDistance(distanceM float64, targetUnits string) float64 {
	switch targetUnits {
	case Meters:
		return distanceM
	case Centimeters:
		return distanceM * 100.0
	case Inches:
		return distanceM * 39.3700787402
	default:
		return distanceM
	}
}

// ConvertToMeters converts a distance in the given units back to meters
func ConvertToMeters(distance float64, fromUnits string) float64 {
	switch fromUnits {
	case Meters:
		return distance
	case Centimeters:
		return distance / 100.0
	case Inches:
		return distance / 39.3700787402
	default:
		return distance
	}
}

// Calibrate scales a distance expressed in normalized frame units into meters
// using the supplied meters-per-unit constant. Non-positive calibration values
// leave the input unchanged so uncalibrated pipelines still produce usable
// relative numbers.
func Calibrate(normalized, metersPerUnit float64) float64 {
	if metersPerUnit <= 0 {
		return normalized
	}
	return normalized * metersPerUnit
}

// FormatElapsed renders a session duration as m:ss (or h:mm:ss past an hour)
// for display in stats and reports.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
