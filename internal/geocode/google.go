package geocode

import (
	"context"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/common"
)

// Google reverse-geocodes through the Google Maps Geocoding API.
type Google struct {
	reverse func(geocoder.Location) ([]geocoder.Address, error)
	logger  zerolog.Logger
}

var _ Reverser = (*Google)(nil)

// NewGoogle configures the package-level key of the geocoder library. Only one
// Google key can be active per process.
func NewGoogle(apiKey string, logger zerolog.Logger) *Google {
	geocoder.ApiKey = apiKey
	return &Google{
		reverse: geocoder.GeocodingReverse,
		logger:  logger.With().Str("component", "geocode.google").Logger(),
	}
}

type googleResult struct {
	addresses []geocoder.Address
	err       error
}

// Reverse runs the lookup in its own goroutine since the library takes no context.
// An abandoned lookup finishes in the background and its result is dropped.
func (g *Google) Reverse(ctx context.Context, lat, lon float64) ([]Place, error) {
	done := make(chan googleResult, 1)
	go func() {
		addresses, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		done <- googleResult{addresses: addresses, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			if isZeroResults(res.err) {
				g.logger.Debug().Float64("lat", lat).Float64("lon", lon).Msg("no places found")
				return []Place{}, nil
			}
			return nil, &Error{Provider: "google", Message: res.err.Error()}
		}
		return toPlaces(res.addresses, lat, lon), nil
	}
}

func isZeroResults(err error) bool {
	return common.ContainsAnyFold(err.Error(), "ZERO_RESULTS", "no results")
}

func toPlaces(addresses []geocoder.Address, lat, lon float64) []Place {
	places := make([]Place, 0, len(addresses))
	for _, a := range addresses {
		name := a.City
		if name == "" {
			name = a.County
		}
		if name == "" {
			name = a.District
		}
		if name == "" {
			continue
		}
		places = append(places, Place{
			Name:    name,
			State:   a.State,
			Country: a.Country,
			Lat:     lat,
			Lon:     lon,
		})
	}
	return places
}
