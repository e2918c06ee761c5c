// Package openmeteo implements a weather backend over the Open-Meteo
// forecast and geocoding APIs.
package openmeteo

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "openmeteo",
		Description:  "Open-Meteo weather forecasts",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.WeatherName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Forecast API base URL", Default: "https://api.open-meteo.com"},
			{Key: "geocoding_url", Label: "Geocoding API base URL", Default: "https://geocoding-api.open-meteo.com"},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg.Get("url"), cfg.Get("geocoding_url"))
		},
	})
}

// weatherTexts maps WMO weather interpretation codes to display text.
var weatherTexts = map[int64]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

func weatherText(code int64) string {
	if text, ok := weatherTexts[code]; ok {
		return text
	}
	return ""
}
