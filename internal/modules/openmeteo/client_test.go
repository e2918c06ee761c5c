package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geocodeFixture = `{
  "results": [
    {
      "id": 2988507,
      "name": "Paris",
      "latitude": 48.85341,
      "longitude": 2.3488,
      "country": "France",
      "admin1": "Île-de-France"
    }
  ]
}`

const forecastFixture = `{
  "latitude": 48.85,
  "longitude": 2.35,
  "current_weather": {
    "time": "2024-03-15T14:00",
    "temperature": 12.3,
    "windspeed": 18.5,
    "weathercode": 61
  },
  "daily": {
    "time": ["2024-03-15", "2024-03-16"],
    "temperature_2m_min": [6.1, 4.9],
    "temperature_2m_max": [13.2, 11.0],
    "weathercode": [61, 3]
  }
}`

func newTestClient(t *testing.T) *client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/search":
			w.Write([]byte(geocodeFixture))
		case "/v1/forecast":
			w.Write([]byte(forecastFixture))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := newClient("meteo", srv.URL, srv.URL)
	require.NoError(t, err)
	return c
}

func TestSearchCities(t *testing.T) {
	c := newTestClient(t)

	cities, err := c.SearchCities(context.Background(), "paris")
	require.NoError(t, err)
	require.Len(t, cities, 1)

	got := cities[0]
	assert.Equal(t, "48.8534,2.3488", got.ID)
	assert.Equal(t, "Paris", got.Name)
	assert.Equal(t, "France", got.Country)
	assert.Equal(t, "Île-de-France", got.Region)
}

func TestCurrentWeather(t *testing.T) {
	c := newTestClient(t)

	weather, err := c.CurrentWeather(context.Background(), "48.8534,2.3488")
	require.NoError(t, err)
	assert.Equal(t, "48.8534,2.3488", weather.CityID)
	assert.Equal(t, 12.3, weather.Temperature)
	assert.Equal(t, "C", weather.Unit)
	assert.Equal(t, "slight rain", weather.Text)
	assert.Equal(t, 18.5, weather.WindSpeed)
	assert.Equal(t, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), weather.Date)
}

func TestForecasts(t *testing.T) {
	c := newTestClient(t)

	forecasts, err := c.Forecasts(context.Background(), "48.8534,2.3488")
	require.NoError(t, err)
	require.Len(t, forecasts, 2)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), forecasts[0].Date)
	assert.Equal(t, 6.1, forecasts[0].Low)
	assert.Equal(t, 13.2, forecasts[0].High)
	assert.Equal(t, "slight rain", forecasts[0].Text)
	assert.Equal(t, "overcast", forecasts[1].Text)
}

func TestCurrentWeather_MalformedCityID(t *testing.T) {
	c := newTestClient(t)

	for _, id := range []string{"", "paris", "48.85", "a,b"} {
		_, err := c.CurrentWeather(context.Background(), id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestCityID_RoundTrip(t *testing.T) {
	id := cityID(48.85341, 2.3488)
	assert.Equal(t, "48.8534,2.3488", id)

	lat, lon, err := parseCityID(id)
	require.NoError(t, err)
	assert.InDelta(t, 48.8534, lat, 0.0001)
	assert.InDelta(t, 2.3488, lon, 0.0001)
}
