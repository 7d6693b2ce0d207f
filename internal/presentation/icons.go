package presentation

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/skycast/internal/weather"
)

// Icon is the glyph shown next to a condition.
type Icon string

const (
	IconClear        Icon = "☀️"
	IconClouds       Icon = "☁️"
	IconRain         Icon = "🌧️"
	IconThunderstorm Icon = "⛈️"
	IconSnow         Icon = "❄️"
	IconMist         Icon = "🌫️"
	IconFog          Icon = "🌁"
)

var icons = map[weather.Condition]Icon{
	weather.ConditionClear:        IconClear,
	weather.ConditionClouds:       IconClouds,
	weather.ConditionRain:         IconRain,
	weather.ConditionDrizzle:      IconRain,
	weather.ConditionThunderstorm: IconThunderstorm,
	weather.ConditionSnow:         IconSnow,
	weather.ConditionMist:         IconMist,
	weather.ConditionFog:          IconFog,
}

// EveningHour is the local hour from which the evening override applies.
const EveningHour = 18

// TitleCase lowercases s and capitalizes each word: "light rain" -> "Light Rain".
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// IconFor maps an upstream condition string to its icon. Unknown conditions get
// the Clear icon.
func IconFor(condition string) Icon {
	if icon, ok := icons[weather.ParseCondition(TitleCase(condition))]; ok {
		return icon
	}
	return IconClear
}

// IconSet picks icons with the evening override: from EveningHour local time, if
// the first sampled forecast entry is Clear, the Clear icon wins regardless of the
// condition asked for.
type IconSet struct {
	clock clockwork.Clock
	zone  *time.Location
}

// NewIconSet creates an IconSet evaluating the local hour in zone.
func NewIconSet(clock clockwork.Clock, zone *time.Location) *IconSet {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if zone == nil {
		zone = time.UTC
	}
	return &IconSet{clock: clock, zone: zone}
}

// For returns the icon of condition given the snapshot's daily forecast.
func (s *IconSet) For(condition string, forecast weather.DailyForecast) Icon {
	if s.evening() && len(forecast) > 0 && TitleCase(forecast[0].ConditionText()) == string(weather.ConditionClear) {
		return IconClear
	}
	return IconFor(condition)
}

func (s *IconSet) evening() bool {
	return s.clock.Now().In(s.zone).Hour() >= EveningHour
}
