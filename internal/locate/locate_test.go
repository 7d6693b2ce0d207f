package locate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/skycast/internal/geocode"
	"github.com/i474232898/skycast/internal/weather"
)

type fakeGeo struct {
	coords weather.Coordinates
	err    error
}

func (f fakeGeo) Locate(context.Context) (weather.Coordinates, error) {
	return f.coords, f.err
}

type fakeReverser struct {
	places []geocode.Place
	err    error
	calls  int
}

func (f *fakeReverser) Reverse(context.Context, float64, float64) ([]geocode.Place, error) {
	f.calls++
	return f.places, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	queries []weather.LocationQuery
	err     error
}

func (f *fakeFetcher) FetchWeather(_ context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return weather.WeatherSnapshot{}, f.err
	}
	return weather.WeatherSnapshot{
		Current:  weather.CurrentConditions{Name: q.City},
		Forecast: weather.DailyForecast{},
		Units:    weather.MetricUnits,
	}, nil
}

type recorder struct {
	transitions []Transition
}

func (r *recorder) observe(t Transition) { r.transitions = append(r.transitions, t) }

func (r *recorder) states() []State {
	out := make([]State, 0, len(r.transitions))
	for _, t := range r.transitions {
		out = append(out, t.To)
	}
	return out
}

var chennai = weather.Coordinates{Lat: 13.08, Lon: 80.27}

func TestResolve_CityFromReverseGeocode(t *testing.T) {
	rec := &recorder{}
	rev := &fakeReverser{places: []geocode.Place{{Name: "Chennai", State: "Tamil Nadu"}}}
	fetch := &fakeFetcher{}
	chain := NewChain(fakeGeo{coords: chennai}, rev, fetch, WithObserver(rec.observe))

	res, err := chain.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Chennai", res.Label)
	assert.Empty(t, res.Notice)
	assert.Equal(t, "Chennai", res.Snapshot.Current.Name)
	require.Len(t, fetch.queries, 1)
	assert.Equal(t, weather.ByCity("Chennai"), fetch.queries[0])
	assert.Equal(t, []State{RequestingPermission, HaveCoordinates, ReverseGeocoding, HaveCityName, FetchingWeather, Done}, rec.states())
}

func TestResolve_ZeroResultsFallsBackToCoordinates(t *testing.T) {
	rev := &fakeReverser{places: []geocode.Place{}}
	fetch := &fakeFetcher{}
	chain := NewChain(fakeGeo{coords: chennai}, rev, fetch)

	res, err := chain.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, UnknownLocation, res.Label)
	assert.Equal(t, CoordinatesNotice, res.Notice)
	require.Len(t, fetch.queries, 1)
	assert.Equal(t, weather.ByCoordinates(13.08, 80.27), fetch.queries[0])
}

func TestResolve_ReverseGeocodeFailureIsSilentFallback(t *testing.T) {
	rev := &fakeReverser{err: errors.New("geocoder down")}
	fetch := &fakeFetcher{}
	chain := NewChain(fakeGeo{coords: chennai}, rev, fetch)

	res, err := chain.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, UnknownLocation, res.Label)
	assert.Empty(t, res.Notice)
	assert.Equal(t, weather.ByCoordinates(13.08, 80.27), fetch.queries[0])
}

func TestResolve_PermissionDeniedMakesNoFetch(t *testing.T) {
	rec := &recorder{}
	rev := &fakeReverser{}
	fetch := &fakeFetcher{}
	chain := NewChain(fakeGeo{err: errors.New("user denied Geolocation")}, rev, fetch, WithObserver(rec.observe))

	_, err := chain.Resolve(context.Background())

	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, fetch.queries)
	assert.Zero(t, rev.calls)
	assert.Equal(t, []State{RequestingPermission, Failed}, rec.states())
}

func TestResolve_PermissionDeniedIsNotWrappedTwice(t *testing.T) {
	fetch := &fakeFetcher{}
	chain := NewChain(fakeGeo{err: ErrPermissionDenied}, nil, fetch)

	_, err := chain.Resolve(context.Background())

	assert.Equal(t, ErrPermissionDenied, err)
	assert.Empty(t, fetch.queries)
}

func TestResolve_NoGeolocationSupport(t *testing.T) {
	rec := &recorder{}
	fetch := &fakeFetcher{}
	chain := NewChain(nil, nil, fetch, WithObserver(rec.observe))

	_, err := chain.Resolve(context.Background())

	require.ErrorIs(t, err, ErrNoGeolocationSupport)
	assert.Empty(t, fetch.queries)
	assert.Equal(t, []State{Idle}, rec.states())
}

func TestResolve_FetchFailureSurfaces(t *testing.T) {
	fetchErr := errors.New("City not found or API failed: Bad Gateway")
	fetch := &fakeFetcher{err: fetchErr}
	chain := NewChain(Fixed(chennai), &fakeReverser{places: []geocode.Place{{Name: "Chennai"}}}, fetch)

	res, err := chain.Resolve(context.Background())

	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, "Chennai", res.Label)
}

func TestResolve_CancelledBeforeStart(t *testing.T) {
	fetch := &fakeFetcher{}
	chain := NewChain(Fixed(chennai), &fakeReverser{}, fetch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Resolve(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetch.queries)
}

// cancellingGeo cancels the run while it reports a position, as a newer
// request would.
type cancellingGeo struct {
	cancel context.CancelFunc
}

func (g cancellingGeo) Locate(context.Context) (weather.Coordinates, error) {
	g.cancel()
	return chennai, nil
}

func TestResolve_CancelledWhileResolvingMakesNoFetch(t *testing.T) {
	rec := &recorder{}
	fetch := &fakeFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	chain := NewChain(cancellingGeo{cancel: cancel}, nil, fetch, WithObserver(rec.observe))

	_, err := chain.Resolve(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetch.queries)
	assert.Equal(t, []State{RequestingPermission, HaveCoordinates, Failed}, rec.states())
}

func TestLocate_StopsBeforeFetch(t *testing.T) {
	fetch := &fakeFetcher{}
	chain := NewChain(Fixed(chennai), &fakeReverser{places: []geocode.Place{{Name: " Chennai "}}}, fetch)

	res, err := chain.locate(context.Background(), &run{chain: chain})

	require.NoError(t, err)
	assert.Equal(t, weather.ByCity("Chennai"), res.Query)
	assert.Equal(t, "Chennai", res.Label)
	require.NotNil(t, res.Coords)
	assert.Equal(t, chennai, *res.Coords)
	assert.Empty(t, fetch.queries)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "reverse_geocoding", ReverseGeocoding.String())
	assert.Equal(t, "state(42)", State(42).String())
}
