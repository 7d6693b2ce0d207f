// Command skycast-cli shows the weather card of a city, a coordinate pair or the
// device position, fetched from a running skycast service.
//
// Usage:
//
//	skycast-cli -city Paris -unit C
//	skycast-cli -lat 13.08 -lon 80.27
//	skycast-cli -locate -lat 13.08 -lon 80.27 -watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/client"
	"github.com/i474232898/skycast/internal/config"
	"github.com/i474232898/skycast/internal/geocode"
	"github.com/i474232898/skycast/internal/locate"
	"github.com/i474232898/skycast/internal/logger"
	"github.com/i474232898/skycast/internal/presentation"
	"github.com/i474232898/skycast/internal/scheduler"
	"github.com/i474232898/skycast/internal/session"
	"github.com/i474232898/skycast/internal/weather"

	_ "time/tzdata"
)

type options struct {
	city   string
	locate bool
	lat    *float64
	lon    *float64
	unit   string
	theme  string
	watch  bool
	plain  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts   options
		latArg string
		lonArg string
	)
	fs := flag.NewFlagSet("skycast-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.city, "city", "", "city to look up (defaults to DEFAULT_CITY)")
	fs.BoolVar(&opts.locate, "locate", false, "resolve -lat/-lon as the device position through reverse geocoding")
	fs.StringVar(&latArg, "lat", "", "latitude in decimal degrees")
	fs.StringVar(&lonArg, "lon", "", "longitude in decimal degrees")
	fs.StringVar(&opts.unit, "unit", "", "temperature unit, C or F (defaults to UNIT)")
	fs.StringVar(&opts.theme, "theme", "", "colour theme, dark or light (defaults to THEME)")
	fs.BoolVar(&opts.watch, "watch", false, "keep running and refresh every REFRESH_INTERVAL")
	fs.BoolVar(&opts.plain, "plain", false, "disable colours")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	var err error
	if opts.lat, err = parseCoordinate("lat", latArg); err != nil {
		return options{}, err
	}
	if opts.lon, err = parseCoordinate("lon", lonArg); err != nil {
		return options{}, err
	}
	return opts, nil
}

func parseCoordinate(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, s, err)
	}
	return &v, nil
}

func main() {
	envErr := godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Level, Format: cfg.Format, Output: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}

	color := !opts.plain && isatty.IsTerminal(os.Stdout.Fd())
	var out io.Writer = os.Stdout
	if color {
		out = colorable.NewColorableStdout()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, opts, out, color, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("skycast-cli failed")
		os.Exit(1)
	}
}

func newReverser(cfg *config.ClientConfig, log zerolog.Logger) geocode.Reverser {
	if cfg.Geocoder == "google" {
		return geocode.NewGoogle(cfg.GeocoderAPIKey, log)
	}
	return geocode.NewOpenWeather(cfg.GeocoderAPIKey, cfg.GeocoderBaseURL, cfg.RequestTimeout, log)
}

func run(ctx context.Context, cfg *config.ClientConfig, opts options, out io.Writer, color bool, log zerolog.Logger) error {
	unit, err := presentation.ParseUnit(firstNonEmpty(opts.unit, cfg.Unit))
	if err != nil {
		return err
	}
	theme, err := presentation.ParseTheme(firstNonEmpty(opts.theme, cfg.Theme))
	if err != nil {
		return err
	}

	api := client.New(cfg.ServiceURL, cfg.RequestTimeout, log)

	var geo locate.Geolocator
	if opts.lat != nil && opts.lon != nil {
		geo = locate.Fixed{Lat: *opts.lat, Lon: *opts.lon}
	}
	chain := locate.NewChain(geo, newReverser(cfg, log), api,
		locate.WithLogger(log),
		locate.WithObserver(func(t locate.Transition) {
			log.Debug().Stringer("from", t.From).Stringer("to", t.To).Msg("locating")
		}),
	)

	sess := session.New(api, chain, session.Options{
		Unit:         unit,
		Theme:        theme,
		ClearOnError: cfg.ClearOnError,
		Logger:       log,
	})

	renderer := presentation.NewRenderer(presentation.NewIconSet(nil, cfg.Zone()), cfg.Zone(), color)
	sess.Subscribe(func(e session.Event, v session.View) {
		if e != session.FetchSucceeded && e != session.FetchFailed {
			return
		}
		if err := renderer.Render(out, v.Card()); err != nil {
			log.Error().Err(err).Msg("render failed")
		}
	})

	switch {
	case opts.locate:
		err = sess.Locate(ctx)
	case opts.city == "" && opts.lat != nil && opts.lon != nil:
		err = sess.FetchCoordinates(ctx, *opts.lat, *opts.lon)
	default:
		err = sess.Search(ctx, firstNonEmpty(opts.city, cfg.DefaultCity))
	}
	if !opts.watch {
		return err
	}

	if cfg.RefreshInterval <= 0 {
		return errors.New("-watch needs REFRESH_INTERVAL to be set")
	}
	if errors.Is(err, locate.ErrNoGeolocationSupport) || errors.Is(err, locate.ErrPermissionDenied) || weather.IsMissingLocation(err) {
		return err
	}

	sched := scheduler.New(sess, cfg.RefreshInterval, cfg.RequestTimeout, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	<-ctx.Done()
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
