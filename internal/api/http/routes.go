package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/skycast/internal/weather"
)

// upstreamFailurePrefix precedes the upstream message in 500 answers.
const upstreamFailurePrefix = "City not found or API failed: "

// RegisterRoutes wires the weather handler into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, log zerolog.Logger) {
	app.Get("/weather", func(c *fiber.Ctx) error {
		q := parseLocationQuery(c)
		reqLog := log.With().
			Str("request_id", fmt.Sprint(c.Locals("requestid"))).
			Logger()

		snapshot, err := service.Lookup(c.UserContext(), q.City, q.Lat, q.Lon)
		if err != nil {
			if weather.IsMissingLocation(err) {
				return fiber.NewError(fiber.StatusBadRequest, weather.MissingLocationMessage)
			}
			reqLog.Error().Err(err).Str("city", q.City).Msg("weather lookup failed")
			return fiber.NewError(fiber.StatusInternalServerError, upstreamFailurePrefix+upstreamMessage(err))
		}

		reqLog.Info().
			Str("location", snapshot.Current.Name).
			Int("days", len(snapshot.Forecast)).
			Msg("weather served")
		return c.JSON(snapshot)
	})
}

// locationQuery holds the raw /weather query parameters. A coordinate that does not
// parse as a float is treated as absent.
type locationQuery struct {
	City string
	Lat  *float64
	Lon  *float64
}

func parseLocationQuery(c *fiber.Ctx) locationQuery {
	return locationQuery{
		City: c.Query("city"),
		Lat:  parseFloatQuery(c, "lat"),
		Lon:  parseFloatQuery(c, "lon"),
	}
}

func parseFloatQuery(c *fiber.Ctx, key string) *float64 {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func upstreamMessage(err error) string {
	var upErr *weather.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Message
	}
	return err.Error()
}
