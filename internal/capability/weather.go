package capability

import (
	"context"
	"time"
)

// City is a location a weather backend can report on.
type City struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Weather is a current observation for a city.
type Weather struct {
	CityID      string    `json:"city_id"`
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Unit        string    `json:"unit"`
	Text        string    `json:"text,omitempty"`
	WindSpeed   float64   `json:"wind_speed,omitempty"`
}

// Forecast is a one-day outlook.
type Forecast struct {
	Date time.Time `json:"date"`
	Low  float64   `json:"low"`
	High float64   `json:"high"`
	Unit string    `json:"unit"`
	Text string    `json:"text,omitempty"`
}

// CapWeather is implemented by backends that report weather conditions.
type CapWeather interface {
	SearchCities(ctx context.Context, pattern string) ([]City, error)
	CurrentWeather(ctx context.Context, cityID string) (*Weather, error)
	Forecasts(ctx context.Context, cityID string) ([]Forecast, error)
}
