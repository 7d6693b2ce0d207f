// Package presentation derives display values from a weather snapshot.
package presentation

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// DefaultUnit is the unit shown before the user picks one.
const DefaultUnit = Fahrenheit

// ParseUnit accepts "C" or "F" in any case.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToUpper(strings.TrimSpace(s))) {
	case Celsius:
		return Celsius, nil
	case Fahrenheit:
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// roundHalfUp rounds ties toward positive infinity, so -0.5 becomes 0.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ToFahrenheit converts Celsius to whole degrees Fahrenheit.
func ToFahrenheit(c float64) int {
	return roundHalfUp(c*9/5 + 32)
}

// ToCelsius rounds a Celsius reading to whole degrees.
func ToCelsius(c float64) int {
	return roundHalfUp(c)
}

// Convert turns a Celsius reading into whole degrees of u.
func (u Unit) Convert(celsius float64) int {
	if u == Celsius {
		return ToCelsius(celsius)
	}
	return ToFahrenheit(celsius)
}

// Format renders a Celsius reading in u, e.g. "88°F".
func (u Unit) Format(celsius float64) string {
	return fmt.Sprintf("%d°%s", u.Convert(celsius), u)
}
