// Package session holds the client's current view and serializes the fetches that change it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/client"
	"github.com/i474232898/skycast/internal/locate"
	"github.com/i474232898/skycast/internal/presentation"
	"github.com/i474232898/skycast/internal/weather"
)

var (
	// ErrSuperseded is returned by a fetch whose result was discarded because a newer one started.
	ErrSuperseded = errors.New("fetch superseded by a newer request")
	// ErrNothingToRefresh is returned by Refresh before any query has been made.
	ErrNothingToRefresh = errors.New("no previous query to refresh")
)

const (
	fallbackErrorText    = "City not found or API failed."
	noGeolocationText    = "Geolocation is not supported on this device."
	permissionDeniedText = "Unable to retrieve your location. Please allow location access."
)

// Event names the transition that produced a view.
type Event int

const (
	FetchStarted Event = iota
	FetchSucceeded
	FetchFailed
	UnitChanged
	ThemeToggled
	LabelChanged
)

func (e Event) String() string {
	switch e {
	case FetchStarted:
		return "fetch_started"
	case FetchSucceeded:
		return "fetch_succeeded"
	case FetchFailed:
		return "fetch_failed"
	case UnitChanged:
		return "unit_changed"
	case ThemeToggled:
		return "theme_toggled"
	case LabelChanged:
		return "label_changed"
	default:
		return "unknown"
	}
}

// View is an immutable snapshot of what the client shows. Sessions replace it
// wholesale on every transition and never mutate a published View.
type View struct {
	Label     string
	Query     weather.LocationQuery
	Snapshot  *weather.WeatherSnapshot
	Error     string
	Notice    string
	Loading   bool
	Unit      presentation.Unit
	Theme     presentation.Theme
	UpdatedAt time.Time
	Seq       uint64
}

// Card converts the view for rendering.
func (v View) Card() presentation.Card {
	return presentation.Card{
		Label:    v.Label,
		Snapshot: v.Snapshot,
		Notice:   v.Notice,
		Error:    v.Error,
		Loading:  v.Loading,
		Unit:     v.Unit,
		Theme:    v.Theme,
	}
}

// Options configures a Session.
type Options struct {
	Unit  presentation.Unit
	Theme presentation.Theme
	// ClearOnError drops the previous snapshot when a fetch fails.
	ClearOnError bool
	Clock        clockwork.Clock
	Logger       zerolog.Logger
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	view   View
	seq    uint64
	cancel context.CancelFunc
	subs   []func(Event, View)

	fetcher      locate.WeatherFetcher
	chain        *locate.Chain
	clearOnError bool
	clock        clockwork.Clock
	logger       zerolog.Logger
}

// New creates a Session. chain may be nil when geolocation is not wired; when set,
// its fetcher should be fetcher.
func New(fetcher locate.WeatherFetcher, chain *locate.Chain, opts Options) *Session {
	if opts.Unit == "" {
		opts.Unit = presentation.DefaultUnit
	}
	if opts.Theme == "" {
		opts.Theme = presentation.DefaultTheme
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Session{
		view:         View{Unit: opts.Unit, Theme: opts.Theme},
		fetcher:      fetcher,
		chain:        chain,
		clearOnError: opts.ClearOnError,
		clock:        opts.Clock,
		logger:       opts.Logger.With().Str("component", "session").Logger(),
	}
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Subscribe registers fn for every transition. fn runs outside the session lock.
func (s *Session) Subscribe(fn func(Event, View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Search fetches by city name.
func (s *Session) Search(ctx context.Context, city string) error {
	q, err := weather.Normalize(city, nil, nil)
	if err != nil {
		s.fail(s.currentSeq(), err)
		return err
	}
	return s.fetch(ctx, q, q.City, "")
}

// FetchCoordinates fetches by a coordinate pair.
func (s *Session) FetchCoordinates(ctx context.Context, lat, lon float64) error {
	q := weather.ByCoordinates(lat, lon)
	return s.fetch(ctx, q, q.Coords.String(), "")
}

// Locate resolves the device position and fetches the resulting query. The
// whole resolution runs under one sequence token, so a search started meanwhile
// cancels it and wins.
func (s *Session) Locate(ctx context.Context) error {
	if s.chain == nil {
		s.fail(s.currentSeq(), locate.ErrNoGeolocationSupport)
		return locate.ErrNoGeolocationSupport
	}

	t := s.begin(ctx, func(v *View) { v.Notice = "" })
	res, err := s.chain.Resolve(t.ctx)
	return s.finish(t, func(v *View) {
		if res.Query.Validate() == nil {
			v.Label = res.Label
			v.Query = res.Query
			v.Notice = res.Notice
		}
	}, res.Snapshot, err)
}

// Refresh re-issues the most recent query.
func (s *Session) Refresh(ctx context.Context) error {
	v := s.View()
	if v.Query.Validate() != nil {
		return ErrNothingToRefresh
	}
	return s.fetch(ctx, v.Query, v.Label, "")
}

// SetUnit changes the display unit.
func (s *Session) SetUnit(u presentation.Unit) {
	s.update(UnitChanged, func(v *View) { v.Unit = u })
}

// ToggleTheme flips between dark and light.
func (s *Session) ToggleTheme() {
	s.update(ThemeToggled, func(v *View) { v.Theme = v.Theme.Toggle() })
}

// SetLabel changes the search text without fetching.
func (s *Session) SetLabel(label string) {
	s.update(LabelChanged, func(v *View) { v.Label = label })
}

// token identifies one in-flight operation. Only the newest token may change the view.
type token struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// begin takes a new sequence token, cancels any in-flight operation and marks
// the view as loading.
func (s *Session) begin(ctx context.Context, fn func(*View)) token {
	fctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	t := token{seq: s.seq, ctx: fctx, cancel: cancel}
	s.cancel = cancel
	next := s.view
	next.Error = ""
	next.Loading = true
	next.Seq = t.seq
	fn(&next)
	s.view = next
	subs := s.subs
	s.mu.Unlock()

	publish(subs, FetchStarted, next)
	s.logger.Debug().Uint64("seq", t.seq).Msg("fetch started")
	return t
}

// finish applies the outcome of t unless a newer token was taken meanwhile.
func (s *Session) finish(t token, apply func(*View), snap weather.WeatherSnapshot, err error) error {
	t.cancel()
	log := s.logger.With().Uint64("seq", t.seq).Logger()

	s.mu.Lock()
	if t.seq != s.seq {
		s.mu.Unlock()
		log.Debug().Msg("fetch superseded, result dropped")
		return ErrSuperseded
	}
	s.cancel = nil
	next := s.view
	next.Loading = false
	if apply != nil {
		apply(&next)
	}
	event := FetchSucceeded
	if err != nil {
		event = FetchFailed
		next.Error = ErrorText(err)
		if s.clearOnError {
			next.Snapshot = nil
		}
	} else {
		next.Snapshot = &snap
		next.UpdatedAt = s.clock.Now()
	}
	s.view = next
	subs := s.subs
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("query", next.Query.Key()).Msg("fetch failed")
	} else {
		log.Debug().Str("location", snap.Current.Name).Msg("fetch succeeded")
	}
	publish(subs, event, next)
	return err
}

func (s *Session) fetch(ctx context.Context, q weather.LocationQuery, label, notice string) error {
	t := s.begin(ctx, func(v *View) {
		v.Label = label
		v.Query = q
		v.Notice = notice
	})
	snap, err := s.fetcher.FetchWeather(t.ctx, q)
	return s.finish(t, nil, snap, err)
}

// fail records an error that happened before any fetch, unless a newer fetch
// has started since seq was read.
func (s *Session) fail(seq uint64, err error) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	next := s.view
	next.Error = ErrorText(err)
	next.Notice = ""
	next.Loading = false
	if s.clearOnError {
		next.Snapshot = nil
	}
	s.view = next
	subs := s.subs
	s.mu.Unlock()

	publish(subs, FetchFailed, next)
}

func (s *Session) update(event Event, fn func(*View)) {
	s.mu.Lock()
	next := s.view
	fn(&next)
	s.view = next
	subs := s.subs
	s.mu.Unlock()

	publish(subs, event, next)
}

func (s *Session) currentSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

func publish(subs []func(Event, View), event Event, v View) {
	for _, fn := range subs {
		fn(event, v)
	}
}

// ErrorText turns an error into the line shown to the user.
func ErrorText(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, weather.ErrMissingLocation):
		return weather.MissingLocationMessage
	case errors.Is(err, locate.ErrNoGeolocationSupport):
		return noGeolocationText
	case errors.Is(err, locate.ErrPermissionDenied):
		return permissionDeniedText
	default:
		return fallbackErrorText
	}
}
