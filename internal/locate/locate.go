// Package locate resolves the device position into a weather query: geolocation,
// then reverse geocoding, then a fallback to raw coordinates.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/geocode"
	"github.com/i474232898/skycast/internal/weather"
)

// State is a step of the resolution chain.
type State int

const (
	Idle State = iota
	RequestingPermission
	HaveCoordinates
	ReverseGeocoding
	HaveCityName
	FetchingWeather
	Done
	Failed
)

var stateNames = [...]string{
	Idle:                 "idle",
	RequestingPermission: "requesting_permission",
	HaveCoordinates:      "have_coordinates",
	ReverseGeocoding:     "reverse_geocoding",
	HaveCityName:         "have_city_name",
	FetchingWeather:      "fetching_weather",
	Done:                 "done",
	Failed:               "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

var (
	// ErrNoGeolocationSupport means the environment cannot provide a position at all.
	ErrNoGeolocationSupport = errors.New("geolocation is not supported")
	// ErrPermissionDenied covers a refused permission and an unavailable position.
	ErrPermissionDenied = errors.New("location permission denied or position unavailable")
)

const (
	// UnknownLocation labels a query that fell back to raw coordinates.
	UnknownLocation = "Unknown Location"
	// CoordinatesNotice is shown when reverse geocoding found no place.
	CoordinatesNotice = "Could not determine city from location. Using coordinates instead."
)

// Geolocator provides the device position.
type Geolocator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// WeatherFetcher retrieves a snapshot for a query.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error)
}

// Transition is reported to the observer on every state change.
type Transition struct {
	From State
	To   State
	Err  error
}

// Resolution is the query a chain settled on, before any weather is fetched.
type Resolution struct {
	Query  weather.LocationQuery
	Label  string
	Notice string
	Coords *weather.Coordinates
}

// Result is a resolution together with the fetched snapshot.
type Result struct {
	Resolution
	Snapshot weather.WeatherSnapshot
}

// Option configures a Chain.
type Option func(*Chain)

// WithObserver registers a callback for state transitions. It runs on the
// resolving goroutine and must not block.
func WithObserver(fn func(Transition)) Option {
	return func(c *Chain) { c.observe = fn }
}

// WithLogger sets the chain logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Chain) { c.logger = l.With().Str("component", "locate").Logger() }
}

// Chain runs the resolution steps. It holds no per-run state and may be used concurrently.
type Chain struct {
	geo      Geolocator
	reverser geocode.Reverser
	fetcher  WeatherFetcher
	observe  func(Transition)
	logger   zerolog.Logger
}

// NewChain builds a chain. A nil geo means the environment has no geolocation.
func NewChain(geo Geolocator, reverser geocode.Reverser, fetcher WeatherFetcher, opts ...Option) *Chain {
	c := &Chain{
		geo:      geo,
		reverser: reverser,
		fetcher:  fetcher,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type run struct {
	chain *Chain
	state State
}

func (r *run) to(next State, err error) {
	if r.chain.observe != nil {
		r.chain.observe(Transition{From: r.state, To: next, Err: err})
	}
	r.chain.logger.Debug().Stringer("from", r.state).Stringer("to", next).Err(err).Msg("transition")
	r.state = next
}

// Resolve runs the whole chain and fetches the weather of the resolved query.
// A context cancelled while resolving stops the run before any fetch.
func (c *Chain) Resolve(ctx context.Context) (Result, error) {
	r := &run{chain: c, state: Idle}
	res, err := c.locate(ctx, r)
	if err != nil {
		return Result{}, err
	}
	return c.fetch(ctx, r, res)
}

func (c *Chain) locate(ctx context.Context, r *run) (Resolution, error) {
	if c.geo == nil {
		r.to(Idle, ErrNoGeolocationSupport)
		return Resolution{}, ErrNoGeolocationSupport
	}

	r.to(RequestingPermission, nil)
	coords, err := c.geo.Locate(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoGeolocationSupport):
			r.to(Idle, err)
			return Resolution{}, err
		case ctx.Err() != nil:
			r.to(Failed, ctx.Err())
			return Resolution{}, ctx.Err()
		case !errors.Is(err, ErrPermissionDenied):
			err = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		r.to(Failed, err)
		return Resolution{}, err
	}
	r.to(HaveCoordinates, nil)

	fallback := Resolution{
		Query:  weather.ByCoordinates(coords.Lat, coords.Lon),
		Label:  UnknownLocation,
		Coords: &coords,
	}

	if c.reverser == nil {
		return fallback, nil
	}

	r.to(ReverseGeocoding, nil)
	places, err := c.reverser.Reverse(ctx, coords.Lat, coords.Lon)
	if ctx.Err() != nil {
		r.to(Failed, ctx.Err())
		return Resolution{}, ctx.Err()
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("reverse geocoding failed, using coordinates")
		r.to(HaveCoordinates, err)
		return fallback, nil
	}
	if len(places) == 0 || strings.TrimSpace(places[0].Name) == "" {
		fallback.Notice = CoordinatesNotice
		r.to(HaveCoordinates, nil)
		return fallback, nil
	}

	name := strings.TrimSpace(places[0].Name)
	c.logger.Debug().Str("place", places[0].Label()).Msg("reverse geocoded")
	r.to(HaveCityName, nil)
	return Resolution{
		Query:  weather.ByCity(name),
		Label:  name,
		Coords: &coords,
	}, nil
}

func (c *Chain) fetch(ctx context.Context, r *run, res Resolution) (Result, error) {
	if err := ctx.Err(); err != nil {
		r.to(Failed, err)
		return Result{Resolution: res}, err
	}
	r.to(FetchingWeather, nil)
	snap, err := c.fetcher.FetchWeather(ctx, res.Query)
	if err != nil {
		r.to(Failed, err)
		return Result{Resolution: res}, err
	}
	r.to(Done, nil)
	return Result{Resolution: res, Snapshot: snap}, nil
}
