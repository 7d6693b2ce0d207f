package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/skycast/internal/observability"
	"github.com/i474232898/skycast/internal/weather"
)

const chennaiCurrent = `{"name":"Chennai","dt":1718870400,"timezone":19800,
	"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],
	"main":{"temp":31.4,"humidity":70},"wind":{"speed":3.6},
	"sys":{"country":"IN","sunrise":1718843190,"sunset":1718889600}}`

const chennaiForecast = `{"cod":"200","list":[
	{"dt":1718874000,"dt_txt":"2024-06-20 09:00:00","main":{"temp":33,"humidity":60},"weather":[{"main":"Clouds"}]},
	{"dt":1718884800,"dt_txt":"2024-06-20 12:00:00","main":{"temp":34,"humidity":58},"weather":[{"main":"Clear"}]},
	{"dt":1718895600,"dt_txt":"2024-06-20 15:00:00","main":{"temp":32,"humidity":62},"weather":[{"main":"Rain"}]},
	{"dt":1718971200,"dt_txt":"2024-06-21 12:00:00","main":{"temp":35,"humidity":55},"weather":[{"main":"Clouds"}]}
]}`

// fakeUpstream answers from canned bodies and records every call.
type fakeUpstream struct {
	mu       sync.Mutex
	calls    []weather.Endpoint
	queries  []weather.LocationQuery
	bodies   map[weather.Endpoint]string
	failures map[weather.Endpoint]error
}

func (f *fakeUpstream) Fetch(_ context.Context, endpoint weather.Endpoint, q weather.LocationQuery) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if err := f.failures[endpoint]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[endpoint]), nil
}

func newTestApp(up *fakeUpstream) *testApp {
	svc := weather.NewService(up, observability.NewMetricsForTesting(), zerolog.Nop())
	return &testApp{app: NewApp(svc, Options{Logger: zerolog.Nop()})}
}

type testApp struct {
	app *fiber.App
}

func (a *testApp) get(t *testing.T, target string) (int, []byte) {
	t.Helper()
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func chennaiUpstream() *fakeUpstream {
	return &fakeUpstream{bodies: map[weather.Endpoint]string{
		weather.EndpointCurrent:  chennaiCurrent,
		weather.EndpointForecast: chennaiForecast,
	}}
}

func TestWeather_CityReturnsMergedSnapshot(t *testing.T) {
	up := chennaiUpstream()
	status, body := newTestApp(up).get(t, "/weather?city=Chennai")

	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Current struct {
			Name string `json:"name"`
			Sys  struct {
				Country string `json:"country"`
			} `json:"sys"`
		} `json:"current"`
		Forecast []struct {
			DtTxt string `json:"dt_txt"`
		} `json:"forecast"`
		Units weather.Units `json:"units"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))

	assert.Equal(t, "Chennai", resp.Current.Name)
	assert.Equal(t, "IN", resp.Current.Sys.Country, "current is passed through in upstream shape")
	require.Len(t, resp.Forecast, 2)
	for _, f := range resp.Forecast {
		assert.Contains(t, f.DtTxt, "12:00:00")
	}
	assert.Equal(t, weather.MetricUnits, resp.Units)

	assert.ElementsMatch(t, []weather.Endpoint{weather.EndpointCurrent, weather.EndpointForecast}, up.calls)
	for _, q := range up.queries {
		assert.Equal(t, "Chennai", q.City)
	}
}

func TestWeather_CoordinatesQuery(t *testing.T) {
	up := chennaiUpstream()
	status, _ := newTestApp(up).get(t, "/weather?lat=13.08&lon=80.27")

	require.Equal(t, http.StatusOK, status)
	require.Len(t, up.queries, 2)
	for _, q := range up.queries {
		require.NotNil(t, q.Coords)
		assert.Equal(t, 13.08, q.Coords.Lat)
		assert.Equal(t, 80.27, q.Coords.Lon)
	}
}

func TestWeather_CityWinsOverCoordinates(t *testing.T) {
	up := chennaiUpstream()
	status, _ := newTestApp(up).get(t, "/weather?city=Chennai&lat=1&lon=2")

	require.Equal(t, http.StatusOK, status)
	for _, q := range up.queries {
		assert.Equal(t, "Chennai", q.City)
		assert.Nil(t, q.Coords)
	}
}

func TestWeather_MissingLocation(t *testing.T) {
	targets := []string{
		"/weather",
		"/weather?city=",
		"/weather?lat=13.08",
		"/weather?lon=80.27",
		"/weather?lat=abc&lon=80.27",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			up := chennaiUpstream()
			status, body := newTestApp(up).get(t, target)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.JSONEq(t, `{"error":"City or coordinates (lat and lon) are required."}`, string(body))
			assert.Empty(t, up.calls, "no upstream call before validation passes")
		})
	}
}

func TestWeather_ForecastFailureIsAllOrNothing(t *testing.T) {
	up := chennaiUpstream()
	up.failures = map[weather.Endpoint]error{
		weather.EndpointForecast: &weather.UpstreamError{
			Endpoint: weather.EndpointForecast,
			Status:   http.StatusBadGateway,
			Message:  "Bad Gateway",
		},
	}

	status, body := newTestApp(up).get(t, "/weather?city=Chennai")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"City not found or API failed: Bad Gateway"}`, string(body))
	assert.NotContains(t, string(body), "current")
}

func TestWeather_UnknownCity(t *testing.T) {
	notFound := &weather.UpstreamError{Status: http.StatusNotFound, Message: "city not found"}
	up := chennaiUpstream()
	up.failures = map[weather.Endpoint]error{
		weather.EndpointCurrent:  notFound,
		weather.EndpointForecast: notFound,
	}

	status, body := newTestApp(up).get(t, "/weather?city=Atlantis")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.True(t, strings.HasSuffix(string(body), `city not found"}`))
}

func TestHealth(t *testing.T) {
	status, body := newTestApp(chennaiUpstream()).get(t, "/health")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","service":"skycast"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	svc := weather.NewService(chennaiUpstream(), observability.NewMetricsForTesting(), zerolog.Nop())
	app := &testApp{app: NewApp(svc, Options{Logger: zerolog.Nop(), Metrics: true})}

	status, _ := app.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, status)

	status, _ = newTestApp(chennaiUpstream()).get(t, "/metrics")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORSHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := newTestApp(chennaiUpstream()).app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
