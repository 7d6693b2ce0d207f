package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLocation is returned when neither a city nor a full coordinate pair is given.
	ErrMissingLocation = errors.New("missing location")

	// ErrUpstreamFailure matches every *UpstreamError via errors.Is.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// MissingLocationMessage is the client-visible text for ErrMissingLocation.
const MissingLocationMessage = "City or coordinates (lat and lon) are required."

// Endpoint names an upstream endpoint.
type Endpoint string

const (
	EndpointCurrent  Endpoint = "current"
	EndpointForecast Endpoint = "forecast"
)

// UpstreamError describes a failed upstream call. Status is the HTTP status when the
// provider answered, zero for transport failures.
type UpstreamError struct {
	Endpoint Endpoint
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream returned %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s upstream failed: %s", e.Endpoint, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFailure
}
