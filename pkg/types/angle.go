package types

import (
	"fmt"
	"math"
	"strings"
)

// AngleUnit selects how trigonometric operators interpret their inputs.
type AngleUnit uint8

// Supported angle units.
const (
	Radians AngleUnit = iota
	Degrees
	Gradians
)

// String returns the lower-case unit name.
func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "degrees"
	case Gradians:
		return "gradians"
	default:
		return "radians"
	}
}

// ParseAngleUnit parses an angle unit name. Short forms rad/deg/grad are
// accepted.
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "radians", "rad":
		return Radians, nil
	case "degrees", "deg":
		return Degrees, nil
	case "gradians", "grad", "gon":
		return Gradians, nil
	default:
		return Radians, fmt.Errorf("unknown angle unit %q", s)
	}
}

// ToRadians converts an angle expressed in u to radians.
func (u AngleUnit) ToRadians(x float64) float64 {
	switch u {
	case Degrees:
		return x * math.Pi / 180
	case Gradians:
		return x * math.Pi / 200
	default:
		return x
	}
}

// FromRadians converts an angle in radians to u.
func (u AngleUnit) FromRadians(x float64) float64 {
	switch u {
	case Degrees:
		return x * 180 / math.Pi
	case Gradians:
		return x * 200 / math.Pi
	default:
		return x
	}
}
