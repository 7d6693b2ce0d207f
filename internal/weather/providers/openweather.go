package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/skycast/internal/observability"
	"github.com/i474232898/skycast/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap data API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var endpointPaths = map[weather.Endpoint]string{
	weather.EndpointCurrent:  "/weather",
	weather.EndpointForecast: "/forecast",
}

// OpenWeatherConfig holds parameters for creating the OpenWeatherMap client.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	// Client is the shared outbound client; its Timeout is left to the caller.
	Client  *http.Client
	Backoff BackoffConfig
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// OpenWeatherProvider implements weather.Upstream for OpenWeatherMap.
type OpenWeatherProvider struct {
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuits map[weather.Endpoint]*gobreaker.CircuitBreaker
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

var _ weather.Upstream = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(cfg OpenWeatherConfig) *OpenWeatherProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &OpenWeatherProvider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: cfg.Backoff,
		},
		circuits: map[weather.Endpoint]*gobreaker.CircuitBreaker{
			weather.EndpointCurrent:  newCircuitBreaker("openweather-current"),
			weather.EndpointForecast: newCircuitBreaker("openweather-forecast"),
		},
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With().Str("component", "openweather").Logger(),
	}
}

// Fetch issues one GET to the named endpoint and returns the raw JSON body.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, endpoint weather.Endpoint, q weather.LocationQuery) ([]byte, error) {
	path, ok := endpointPaths[endpoint]
	if !ok {
		return nil, &weather.UpstreamError{Endpoint: endpoint, Message: "unknown endpoint"}
	}
	if p.apiKey == "" {
		return nil, &weather.UpstreamError{Endpoint: endpoint, Message: "openweather api key is not configured"}
	}

	values := RequestParams(q, p.apiKey)
	u := p.baseURL + path + "?" + values.Encode()

	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	}

	p.logger.Debug().
		Str("endpoint", string(endpoint)).
		Str("url", redact(u, p.apiKey)).
		Msg("calling upstream")

	start := time.Now()
	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuits[endpoint], buildRequest)
	p.metrics.UpstreamDuration.WithLabelValues(string(endpoint)).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, errCircuitOpen) {
			outcome = "circuit_open"
		}
		p.metrics.UpstreamRequests.WithLabelValues(string(endpoint), outcome).Inc()
		upErr := toUpstreamError(endpoint, err, p.apiKey)
		p.logger.Warn().
			Str("endpoint", string(endpoint)).
			Int("status", upErr.Status).
			Str("message", upErr.Message).
			Msg("upstream call failed")
		return nil, upErr
	}

	p.metrics.UpstreamRequests.WithLabelValues(string(endpoint), "success").Inc()
	return body, nil
}

// RequestParams builds the query string shared by both endpoints: the location
// (q, or lat and lon), the credential and units=metric.
func RequestParams(q weather.LocationQuery, apiKey string) url.Values {
	values := url.Values{}
	if q.IsCity() {
		values.Set("q", q.City)
	} else if q.Coords != nil {
		values.Set("lat", strconv.FormatFloat(q.Coords.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(q.Coords.Lon, 'f', -1, 64))
	}
	values.Set("appid", apiKey)
	values.Set("units", "metric")
	return values
}

// errorBody is the upstream error document, e.g. {"cod":"404","message":"city not found"}.
// cod arrives as a string or a number depending on the endpoint.
type errorBody struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

func toUpstreamError(endpoint weather.Endpoint, err error, apiKey string) *weather.UpstreamError {
	var se *statusError
	if errors.As(err, &se) {
		msg := http.StatusText(se.Status)
		var body errorBody
		if jsonErr := json.Unmarshal(se.Body, &body); jsonErr == nil && body.Message != "" {
			msg = body.Message
		}
		return &weather.UpstreamError{Endpoint: endpoint, Status: se.Status, Message: msg, Err: err}
	}
	return &weather.UpstreamError{
		Endpoint: endpoint,
		Message:  redact(err.Error(), apiKey),
		Err:      err,
	}
}

// redact hides the credential in URLs and error texts before they are logged or returned.
func redact(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, apiKey, "***")
}

func (p *OpenWeatherProvider) String() string {
	return fmt.Sprintf("openweather(%s)", p.baseURL)
}
