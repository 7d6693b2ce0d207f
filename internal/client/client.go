// Package client talks to a running aggregation service over HTTP.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/weather"
)

const weatherPath = "/weather"

// APIError is a non-2xx answer from the service, carrying its {"error": ...} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("skycast returned %d: %s", e.Status, e.Message)
}

// Client fetches weather snapshots from the service.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a Client for the service at baseURL. A zero timeout relies on the
// caller's context alone.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{
		http:   rc,
		logger: logger.With().Str("component", "client").Logger(),
	}
}

// FetchWeather asks the service for the snapshot of q.
func (c *Client) FetchWeather(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error) {
	if err := q.Validate(); err != nil {
		return weather.WeatherSnapshot{}, err
	}

	req := c.http.R().SetContext(ctx)
	if q.IsCity() {
		req.SetQueryParam("city", q.City)
	} else {
		req.SetQueryParams(map[string]string{
			"lat": strconv.FormatFloat(q.Coords.Lat, 'f', -1, 64),
			"lon": strconv.FormatFloat(q.Coords.Lon, 'f', -1, 64),
		})
	}

	resp, err := req.Get(weatherPath)
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("fetch weather: %w", err)
	}

	c.logger.Debug().
		Str("query", q.Key()).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("weather fetched")

	if !resp.IsSuccess() {
		return weather.WeatherSnapshot{}, parseAPIError(resp)
	}

	var snap weather.WeatherSnapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode weather: %w", err)
	}
	if snap.Forecast == nil {
		snap.Forecast = weather.DailyForecast{}
	}
	return snap, nil
}

func parseAPIError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode())
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
