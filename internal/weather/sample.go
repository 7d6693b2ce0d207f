package weather

import "strings"

// NoonMarker is the time-of-day text that selects the representative entry of a day.
// It is matched against the provider's timestamp text, so it is provider-local time.
const NoonMarker = "12:00:00"

// Sample keeps the entries whose timestamp text contains NoonMarker, in input order.
// Days without such an entry are simply absent; the result is never nil.
func Sample(series []ForecastEntry) DailyForecast {
	daily := make(DailyForecast, 0, len(series)/8+1)
	for _, e := range series {
		if strings.Contains(e.DtTxt, NoonMarker) {
			daily = append(daily, e)
		}
	}
	return daily
}
