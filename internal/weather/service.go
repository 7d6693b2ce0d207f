package weather

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/skycast/internal/observability"
)

// Service merges the current-conditions and forecast endpoints into one snapshot.
type Service struct {
	upstream Upstream
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewService creates a new Service.
func NewService(upstream Upstream, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		upstream: upstream,
		metrics:  metrics,
		logger:   logger.With().Str("component", "aggregator").Logger(),
	}
}

// Lookup normalizes raw inputs and aggregates the resulting query.
func (s *Service) Lookup(ctx context.Context, city string, lat, lon *float64) (WeatherSnapshot, error) {
	q, err := Normalize(city, lat, lon)
	if err != nil {
		s.metrics.Aggregations.WithLabelValues("missing_location").Inc()
		return WeatherSnapshot{}, err
	}
	return s.Aggregate(ctx, q)
}

// Aggregate fetches both endpoints concurrently and waits for both. If either leg
// fails the whole call fails with that leg's error; no partial snapshot is returned.
func (s *Service) Aggregate(ctx context.Context, q LocationQuery) (WeatherSnapshot, error) {
	if err := q.Validate(); err != nil {
		s.metrics.Aggregations.WithLabelValues("missing_location").Inc()
		return WeatherSnapshot{}, err
	}

	log := s.logger.With().Str("query", q.Key()).Logger()
	log.Debug().Msg("aggregating weather")

	var (
		current CurrentConditions
		series  ForecastSeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.upstream.Fetch(gctx, EndpointCurrent, q)
		if err != nil {
			return err
		}
		return decode(EndpointCurrent, raw, &current)
	})
	g.Go(func() error {
		raw, err := s.upstream.Fetch(gctx, EndpointForecast, q)
		if err != nil {
			return err
		}
		var doc forecastDocument
		if err := decode(EndpointForecast, raw, &doc); err != nil {
			return err
		}
		series = doc.List
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.Aggregations.WithLabelValues("upstream_error").Inc()
		log.Warn().Err(err).Msg("aggregation failed")
		return WeatherSnapshot{}, err
	}

	daily := Sample(series)
	s.metrics.Aggregations.WithLabelValues("success").Inc()
	s.metrics.SampledDays.Observe(float64(len(daily)))

	log.Debug().
		Str("location", current.Name).
		Int("series", len(series)).
		Int("days", len(daily)).
		Msg("aggregation succeeded")

	return WeatherSnapshot{
		Current:  current,
		Forecast: daily,
		Units:    MetricUnits,
	}, nil
}

func decode(endpoint Endpoint, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &UpstreamError{
			Endpoint: endpoint,
			Message:  "invalid response body: " + err.Error(),
			Err:      err,
		}
	}
	return nil
}

// IsMissingLocation reports whether err is a missing-location validation failure.
func IsMissingLocation(err error) bool {
	return errors.Is(err, ErrMissingLocation)
}
