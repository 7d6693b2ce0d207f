package locate

import (
	"context"

	"github.com/i474232898/skycast/internal/weather"
)

// Fixed is a Geolocator that always reports the same position.
type Fixed weather.Coordinates

func (f Fixed) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	return weather.Coordinates(f), nil
}
