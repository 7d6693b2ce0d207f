package presentation

import (
	"fmt"
	"time"

	"github.com/i474232898/skycast/internal/weather"
)

const (
	dateTimeLayout = "Monday, January 2, 2006 at 03:04 PM MST"
	clockLayout    = "3:04:05 PM"
	weekdayLayout  = "Mon"
)

// FormatDateTime renders t in zone, e.g. "Thursday, June 20, 2024 at 01:30 PM IST".
func FormatDateTime(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(dateTimeLayout)
}

// FormatClock renders a time of day in zone, e.g. "6:16:30 AM".
func FormatClock(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(clockLayout)
}

// Weekday labels a forecast entry with the short day name of its timestamp text.
func Weekday(e weather.ForecastEntry) string {
	return e.Time().Format(weekdayLayout)
}

// FormatWind renders a wind speed with the unit the snapshot reports.
func FormatWind(speed float64, units weather.Units) string {
	unit := units.WindSpeed
	if unit == "" {
		unit = weather.MetricUnits.WindSpeed
	}
	return fmt.Sprintf("%.1f %s", speed, unit)
}

// FormatHumidity renders a relative humidity, or "No data" when it is absent.
func FormatHumidity(h int) string {
	if h == 0 {
		return "No data"
	}
	return fmt.Sprintf("%d%%", h)
}
