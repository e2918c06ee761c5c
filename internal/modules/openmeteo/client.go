package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
)

type client struct {
	backend  string
	forecast *browser.Browser
	geocode  *browser.Browser
}

var _ capability.CapWeather = (*client)(nil)

func newClient(backend, forecastURL, geocodingURL string) (*client, error) {
	forecast, err := browser.New(browser.Options{
		BaseURL: forecastURL,
		Timeout: 20 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	geocode, err := browser.New(browser.Options{
		BaseURL: geocodingURL,
		Timeout: 20 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	return &client{backend: backend, forecast: forecast, geocode: geocode}, nil
}

// City IDs are "lat,lon" pairs: the forecast endpoint is keyed by
// coordinates, not by the geocoder's numeric IDs.
func cityID(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func parseCityID(id string) (lat, lon float64, err error) {
	parts := strings.SplitN(id, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed city id %q", id)
	}
	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed city id %q", id)
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed city id %q", id)
	}
	return lat, lon, nil
}

// SearchCities resolves a name through the geocoding API.
func (c *client) SearchCities(ctx context.Context, pattern string) ([]capability.City, error) {
	doc, err := c.geocode.Get(ctx, "/v1/search", url.Values{
		"name":  {pattern},
		"count": {"10"},
	})
	if err != nil {
		return nil, capability.WrapErr(c.backend, "search cities", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "search cities", err)
	}

	var out []capability.City
	doc.JSONPath("results").ForEach(func(_, r gjson.Result) bool {
		lat := r.Get("latitude").Float()
		lon := r.Get("longitude").Float()
		out = append(out, capability.City{
			ID:        cityID(lat, lon),
			Name:      r.Get("name").String(),
			Country:   r.Get("country").String(),
			Region:    r.Get("admin1").String(),
			Latitude:  lat,
			Longitude: lon,
		})
		return true
	})
	return out, nil
}

func (c *client) fetchForecast(ctx context.Context, id string) (*browser.Document, error) {
	lat, lon, err := parseCityID(id)
	if err != nil {
		return nil, err
	}
	doc, err := c.forecast.Get(ctx, "/v1/forecast", url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', 4, 64)},
		"current_weather": {"true"},
		"daily":           {"temperature_2m_min,temperature_2m_max,weathercode"},
		"timezone":        {"UTC"},
	})
	if err != nil {
		return nil, err
	}
	if err := doc.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// CurrentWeather returns the current observation for a "lat,lon" city ID.
func (c *client) CurrentWeather(ctx context.Context, id string) (*capability.Weather, error) {
	doc, err := c.fetchForecast(ctx, id)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "current weather", err)
	}

	current := doc.JSONPath("current_weather")
	if !current.Exists() {
		return nil, capability.WrapErr(c.backend, "current weather", capability.ErrNotFound)
	}

	date, _ := time.Parse("2006-01-02T15:04", current.Get("time").String())
	return &capability.Weather{
		CityID:      id,
		Date:        date,
		Temperature: current.Get("temperature").Float(),
		Unit:        "C",
		Text:        weatherText(current.Get("weathercode").Int()),
		WindSpeed:   current.Get("windspeed").Float(),
	}, nil
}

// Forecasts returns the daily outlook for a "lat,lon" city ID.
func (c *client) Forecasts(ctx context.Context, id string) ([]capability.Forecast, error) {
	doc, err := c.fetchForecast(ctx, id)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "forecasts", err)
	}

	daily := doc.JSONPath("daily")
	dates := daily.Get("time").Array()
	lows := daily.Get("temperature_2m_min").Array()
	highs := daily.Get("temperature_2m_max").Array()
	codes := daily.Get("weathercode").Array()

	var out []capability.Forecast
	for i, d := range dates {
		f := capability.Forecast{Unit: "C"}
		f.Date, _ = time.Parse("2006-01-02", d.String())
		if i < len(lows) {
			f.Low = lows[i].Float()
		}
		if i < len(highs) {
			f.High = highs[i].Float()
		}
		if i < len(codes) {
			f.Text = weatherText(codes[i].Int())
		}
		out = append(out, f)
	}
	return out, nil
}
