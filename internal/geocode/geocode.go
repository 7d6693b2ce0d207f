// Package geocode resolves coordinates to place names.
package geocode

import (
	"context"
	"fmt"
)

// Place is one reverse-geocoding result.
type Place struct {
	Name    string
	State   string
	Country string
	Lat     float64
	Lon     float64
}

// Label formats the place for display, e.g. "Chennai, Tamil Nadu".
func (p Place) Label() string {
	switch {
	case p.State != "":
		return fmt.Sprintf("%s, %s", p.Name, p.State)
	case p.Country != "":
		return fmt.Sprintf("%s, %s", p.Name, p.Country)
	default:
		return p.Name
	}
}

// Reverser turns a coordinate pair into candidate places. No match is an empty
// slice with a nil error; an error means the lookup itself failed.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) ([]Place, error)
}

// Error is a non-2xx answer from a geocoding API.
type Error struct {
	Provider string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s geocoding error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s geocoding error: %s", e.Provider, e.Message)
}
