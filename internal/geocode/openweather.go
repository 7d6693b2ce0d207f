package geocode

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
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap geocoding API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/geo/1.0"

const (
	reverseEndpoint = "/reverse"
	userAgent       = "skycast/1.0"
)

// OpenWeather reverse-geocodes through the OpenWeatherMap geocoding API.
type OpenWeather struct {
	client *resty.Client
	apiKey string
	logger zerolog.Logger
}

var _ Reverser = (*OpenWeather)(nil)

// NewOpenWeather creates the client. A zero timeout leaves requests unbounded
// except by the caller's context.
func NewOpenWeather(apiKey, baseURL string, timeout time.Duration, logger zerolog.Logger) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &OpenWeather{
		client: client,
		apiKey: apiKey,
		logger: logger.With().Str("component", "geocode.openweather").Logger(),
	}
}

type reverseResult struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Reverse asks for at most one place near the coordinates.
func (o *OpenWeather) Reverse(ctx context.Context, lat, lon float64) ([]Place, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
			"limit": "1",
			"appid": o.apiKey,
		}).
		Get(reverseEndpoint)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request: %s", strings.ReplaceAll(err.Error(), o.apiKey, "***"))
	}

	o.logger.Debug().
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("reverse geocode answered")

	if !resp.IsSuccess() {
		return nil, parseError(resp)
	}

	var results []reverseResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil, fmt.Errorf("decode reverse geocode response: %w", err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		places = append(places, Place{
			Name:    r.Name,
			State:   r.State,
			Country: r.Country,
			Lat:     r.Lat,
			Lon:     r.Lon,
		})
	}
	return places, nil
}

func parseError(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	msg := http.StatusText(resp.StatusCode())
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	return &Error{Provider: "openweather", Status: resp.StatusCode(), Message: msg}
}
