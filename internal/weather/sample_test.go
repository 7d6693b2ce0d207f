package weather

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fiveDaySeries builds a 40-entry 3-hour series starting at midnight of day one.
func fiveDaySeries() ForecastSeries {
	series := make(ForecastSeries, 0, 40)
	for day := 1; day <= 5; day++ {
		for hour := 0; hour < 24; hour += 3 {
			series = append(series, ForecastEntry{
				DtTxt: fmt.Sprintf("2024-06-%02d %02d:00:00", day, hour),
				Main:  Readings{Temp: float64(hour)},
			})
		}
	}
	return series
}

func TestSample_OnePerDayAtNoon(t *testing.T) {
	daily := Sample(fiveDaySeries())

	assert.Len(t, daily, 5)
	for i, e := range daily {
		assert.Equal(t, fmt.Sprintf("2024-06-%02d 12:00:00", i+1), e.DtTxt)
		assert.Equal(t, 12.0, e.Main.Temp)
	}
}

func TestSample_Empty(t *testing.T) {
	daily := Sample(nil)

	assert.NotNil(t, daily)
	assert.Empty(t, daily)
}

func TestSample_NoMatchingEntries(t *testing.T) {
	series := ForecastSeries{
		{DtTxt: "2024-06-01 13:30:00"},
		{DtTxt: "2024-06-01 16:30:00"},
	}

	assert.Empty(t, Sample(series))
}

func TestSample_PreservesInputOrder(t *testing.T) {
	series := ForecastSeries{
		{DtTxt: "2024-06-03 12:00:00"},
		{DtTxt: "2024-06-01 12:00:00"},
	}

	daily := Sample(series)

	assert.Equal(t, "2024-06-03 12:00:00", daily[0].DtTxt)
	assert.Equal(t, "2024-06-01 12:00:00", daily[1].DtTxt)
}

func TestSample_Idempotent(t *testing.T) {
	once := Sample(fiveDaySeries())
	twice := Sample(once)

	assert.Equal(t, once, twice)
}
