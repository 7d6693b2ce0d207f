package weather

import "strings"

// Normalize classifies raw location inputs. A non-empty city always wins over
// coordinates; otherwise both lat and lon must be present.
func Normalize(city string, lat, lon *float64) (LocationQuery, error) {
	if name := strings.TrimSpace(city); name != "" {
		return ByCity(name), nil
	}
	if lat == nil || lon == nil {
		return LocationQuery{}, ErrMissingLocation
	}
	return ByCoordinates(*lat, *lon), nil
}

// Validate checks that the query carries exactly one usable variant.
func (q LocationQuery) Validate() error {
	switch {
	case q.IsCity() && q.Coords != nil:
		return ErrMissingLocation
	case q.IsCity(), q.Coords != nil:
		return nil
	default:
		return ErrMissingLocation
	}
}
