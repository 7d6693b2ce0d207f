package presentation

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/i474232898/skycast/internal/weather"
)

const tileWidth = 8

// Card is everything the terminal card shows at one moment.
type Card struct {
	Label    string
	Snapshot *weather.WeatherSnapshot
	Notice   string
	Error    string
	Loading  bool
	Unit     Unit
	Theme    Theme
}

// Renderer draws cards as text.
type Renderer struct {
	icons *IconSet
	zone  *time.Location
	color bool
}

// NewRenderer creates a Renderer. color enables ANSI sequences.
func NewRenderer(icons *IconSet, zone *time.Location, color bool) *Renderer {
	if zone == nil {
		zone = time.UTC
	}
	return &Renderer{icons: icons, zone: zone, color: color}
}

// Render writes c to w in one write.
func (r *Renderer) Render(w io.Writer, c Card) error {
	p := c.Theme.Palette(r.color)
	unit := c.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sSKY CAST%s\n", p.Title, p.Reset)

	switch {
	case c.Error != "":
		fmt.Fprintf(&b, "%s%s%s\n", p.Error, c.Error, p.Reset)
	case c.Notice != "":
		fmt.Fprintf(&b, "%s%s%s\n", p.Accent, c.Notice, p.Reset)
	}
	if c.Loading {
		fmt.Fprintf(&b, "%sLoading %s...%s\n", p.Muted, c.Label, p.Reset)
	}

	if c.Snapshot != nil {
		r.current(&b, p, unit, c.Label, c.Snapshot)
		r.forecast(&b, p, unit, c.Snapshot.Forecast)
		r.highlights(&b, p, c.Snapshot)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) current(b *strings.Builder, p Palette, unit Unit, label string, s *weather.WeatherSnapshot) {
	cur := s.Current
	name := cur.Name
	if name == "" {
		name = label
	}
	icon := r.icons.For(cur.ConditionText(), s.Forecast)

	fmt.Fprintf(b, "\n%s %s%s%s  %s%s%s\n", icon, p.Title, unit.Format(cur.Main.Temp), p.Reset, p.Text, name, p.Reset)
	if label != "" && label != name {
		fmt.Fprintf(b, "%s(%s)%s\n", p.Muted, label, p.Reset)
	}
	fmt.Fprintf(b, "%s%s%s\n", p.Text, FormatDateTime(cur.Time(), r.zone), p.Reset)
	fmt.Fprintf(b, "%s%s Day%s\n", p.Muted, cur.ConditionText(), p.Reset)
}

func (r *Renderer) forecast(b *strings.Builder, p Palette, unit Unit, daily weather.DailyForecast) {
	if len(daily) == 0 {
		return
	}
	days := make([]string, 0, len(daily))
	glyphs := make([]string, 0, len(daily))
	temps := make([]string, 0, len(daily))
	for _, e := range daily {
		days = append(days, runewidth.FillRight(Weekday(e), tileWidth))
		glyphs = append(glyphs, runewidth.FillRight(string(IconFor(e.ConditionText())), tileWidth))
		temps = append(temps, runewidth.FillRight(unit.Format(e.Main.Temp), tileWidth))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "%s%s%s\n", p.Muted, strings.TrimRight(strings.Join(days, ""), " "), p.Reset)
	fmt.Fprintf(b, "%s\n", strings.TrimRight(strings.Join(glyphs, ""), " "))
	fmt.Fprintf(b, "%s%s%s\n", p.Text, strings.TrimRight(strings.Join(temps, ""), " "), p.Reset)
}

func (r *Renderer) highlights(b *strings.Builder, p Palette, s *weather.WeatherSnapshot) {
	cur := s.Current
	rows := [][2]string{
		{"Wind Status", FormatWind(cur.Wind.Speed, s.Units)},
		{"Sunrise", FormatClock(cur.Sunrise(), r.zone)},
		{"Sunset", FormatClock(cur.Sunset(), r.zone)},
		{"Humidity", FormatHumidity(cur.Main.Humidity)},
	}
	fmt.Fprintf(b, "\n%sToday's Highlights%s\n", p.Title, p.Reset)
	for _, row := range rows {
		fmt.Fprintf(b, "%s%s%s %s%s%s\n", p.Muted, runewidth.FillRight(row[0], 12), p.Reset, p.Text, row[1], p.Reset)
	}
}
