package weather

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Condition is the primary condition category reported by the upstream provider.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	// ConditionOther covers every category outside the set above (Haze, Smoke, Dust, ...).
	ConditionOther Condition = "Other"
)

var knownConditions = map[string]Condition{
	string(ConditionClear):        ConditionClear,
	string(ConditionClouds):       ConditionClouds,
	string(ConditionRain):         ConditionRain,
	string(ConditionDrizzle):      ConditionDrizzle,
	string(ConditionThunderstorm): ConditionThunderstorm,
	string(ConditionSnow):         ConditionSnow,
	string(ConditionMist):         ConditionMist,
	string(ConditionFog):          ConditionFog,
}

// ParseCondition maps an upstream category string onto the closed Condition set.
func ParseCondition(s string) Condition {
	if c, ok := knownConditions[s]; ok {
		return c
	}
	return ConditionOther
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// LocationQuery identifies a place either by city name or by coordinates.
// Exactly one of City and Coords is set on a normalized query.
type LocationQuery struct {
	City   string
	Coords *Coordinates
}

// ByCity builds a city-name query.
func ByCity(name string) LocationQuery {
	return LocationQuery{City: name}
}

// ByCoordinates builds a coordinate query.
func ByCoordinates(lat, lon float64) LocationQuery {
	return LocationQuery{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// IsCity reports whether the query is a city-name lookup.
func (q LocationQuery) IsCity() bool {
	return q.City != ""
}

// Key returns a canonical string for logs and metrics labels.
func (q LocationQuery) Key() string {
	if q.IsCity() {
		return "city:" + q.City
	}
	if q.Coords != nil {
		return "coords:" + q.Coords.String()
	}
	return "none"
}

// ConditionDescriptor is one element of the upstream "weather" array.
type ConditionDescriptor struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Readings holds the "main" block of an upstream document.
type Readings struct {
	Temp     float64 `json:"temp"`
	Humidity int     `json:"humidity"`
}

// Wind holds the "wind" block. Speed is in the unit named by Units.WindSpeed.
type Wind struct {
	Speed float64 `json:"speed"`
}

// SunTimes holds the "sys" block of the current-conditions document.
type SunTimes struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// CurrentConditions is the upstream current-weather document. The raw bytes it was
// decoded from are kept and emitted unchanged when it is encoded again.
type CurrentConditions struct {
	Name     string                `json:"name"`
	Dt       int64                 `json:"dt"`
	Timezone int                   `json:"timezone"`
	Weather  []ConditionDescriptor `json:"weather"`
	Main     Readings              `json:"main"`
	Wind     Wind                  `json:"wind"`
	Sys      SunTimes              `json:"sys"`

	raw []byte
}

type currentAlias CurrentConditions

func (c *CurrentConditions) UnmarshalJSON(data []byte) error {
	var a currentAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CurrentConditions(a)
	c.raw = append([]byte(nil), data...)
	return nil
}

func (c CurrentConditions) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	return json.Marshal(currentAlias(c))
}

// Condition returns the primary condition category.
func (c CurrentConditions) Condition() Condition {
	return ParseCondition(c.ConditionText())
}

// ConditionText returns the upstream category string of the first weather element.
func (c CurrentConditions) ConditionText() string {
	if len(c.Weather) == 0 {
		return ""
	}
	return c.Weather[0].Main
}

// Time returns the observation time.
func (c CurrentConditions) Time() time.Time {
	return time.Unix(c.Dt, 0).UTC()
}

// Sunrise returns the sunrise time.
func (c CurrentConditions) Sunrise() time.Time {
	return time.Unix(c.Sys.Sunrise, 0).UTC()
}

// Sunset returns the sunset time.
func (c CurrentConditions) Sunset() time.Time {
	return time.Unix(c.Sys.Sunset, 0).UTC()
}

// ForecastEntry is one 3-hour item of the upstream forecast list.
type ForecastEntry struct {
	Dt      int64                 `json:"dt"`
	DtTxt   string                `json:"dt_txt"`
	Main    Readings              `json:"main"`
	Weather []ConditionDescriptor `json:"weather"`

	raw []byte
}

type entryAlias ForecastEntry

func (e *ForecastEntry) UnmarshalJSON(data []byte) error {
	var a entryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = ForecastEntry(a)
	e.raw = append([]byte(nil), data...)
	return nil
}

func (e ForecastEntry) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	return json.Marshal(entryAlias(e))
}

// Condition returns the primary condition category.
func (e ForecastEntry) Condition() Condition {
	return ParseCondition(e.ConditionText())
}

// ConditionText returns the upstream category string of the first weather element.
func (e ForecastEntry) ConditionText() string {
	if len(e.Weather) == 0 {
		return ""
	}
	return e.Weather[0].Main
}

// Time returns the entry time parsed from DtTxt, falling back to Dt.
func (e ForecastEntry) Time() time.Time {
	if t, err := time.Parse(TimestampTextLayout, e.DtTxt); err == nil {
		return t
	}
	return time.Unix(e.Dt, 0).UTC()
}

// TimestampTextLayout is the upstream layout of ForecastEntry.DtTxt.
const TimestampTextLayout = "2006-01-02 15:04:05"

// ForecastSeries is the upstream 3-hour forecast list in chronological order.
type ForecastSeries []ForecastEntry

// DailyForecast holds at most one entry per calendar day.
type DailyForecast []ForecastEntry

// forecastDocument is the envelope of the upstream forecast endpoint.
type forecastDocument struct {
	List ForecastSeries `json:"list"`
}

// Units records the measurement units of a snapshot.
type Units struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"windSpeed"`
}

// MetricUnits are the units of an upstream response requested with units=metric.
var MetricUnits = Units{
	Temperature: "celsius",
	WindSpeed:   "m/s",
}

// WeatherSnapshot is the merged result of one aggregate call.
type WeatherSnapshot struct {
	Current  CurrentConditions `json:"current"`
	Forecast DailyForecast     `json:"forecast"`
	Units    Units             `json:"units"`
}

func (s WeatherSnapshot) String() string {
	return fmt.Sprintf("%s %.1f°C %s (+%d days)", s.Current.Name, s.Current.Main.Temp, s.Current.ConditionText(), len(s.Forecast))
}
