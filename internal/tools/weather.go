package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Open-Meteo endpoints (no API key required).
const (
	geocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL = "https://api.open-meteo.com/v1/forecast"
)

func registerWeatherTools(srv *mcp.Server, client *http.Client) {
	registerGetWeatherTool(srv, client)
	registerGeocodeTool(srv, client)
	registerForecastTool(srv, client)
}

// getJSON fetches a URL with query params and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, out any) error {
	target := rawURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: status %d", rawURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", rawURL, err)
	}
	return nil
}

type geoResult struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
	Admin2      string  `json:"admin2"`
	Timezone    string  `json:"timezone"`
	Population  int64   `json:"population"`
}

type geoResponse struct {
	Results []geoResult `json:"results"`
}

type getWeatherReq struct {
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Units       string `json:"units"`
}

func registerGetWeatherTool(srv *mcp.Server, client *http.Client) {
	tool := &mcp.Tool{
		Name: "get_weather",
		Description: "Fetch current weather for a city using the Open-Meteo APIs " +
			"(geocoding + forecast). No API key or auth required.",
		InputSchema: inputSchema(map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City name to fetch weather for",
			},
			"country_code": map[string]any{
				"type":        "string",
				"description": "Optional country code to disambiguate the city",
			},
			"units": map[string]any{
				"type":        "string",
				"description": "Units system: 'metric' (C, m/s) or 'imperial' (F, mph). Defaults to metric.",
			},
		}, []string{"city"}),
	}

	register(srv, tool, func(ctx context.Context, req getWeatherReq) (any, error) {
		query := strings.TrimSpace(req.City)
		if req.CountryCode != "" {
			query = query + "," + strings.TrimSpace(req.CountryCode)
		}
		wantImperial := strings.HasPrefix(strings.ToLower(req.Units), "imp")

		var geo geoResponse
		params := url.Values{"name": {query}, "count": {"1"}}
		if err := getJSON(ctx, client, geocodeURL, params, &geo); err != nil {
			return nil, err
		}
		if len(geo.Results) == 0 {
			return nil, fmt.Errorf("could not find location for %q", query)
		}
		loc := geo.Results[0]

		var weather struct {
			CurrentWeather map[string]any `json:"current_weather"`
		}
		params = url.Values{
			"latitude":        {formatFloat(loc.Latitude)},
			"longitude":       {formatFloat(loc.Longitude)},
			"current_weather": {"true"},
		}
		if err := getJSON(ctx, client, forecastURL, params, &weather); err != nil {
			return nil, err
		}

		current := weather.CurrentWeather
		if current == nil {
			current = map[string]any{}
		}
		if wantImperial {
			if temp, ok := current["temperature"].(float64); ok {
				current["temperature_f"] = math.Round((temp*9/5+32)*10) / 10
			}
			if wind, ok := current["windspeed"].(float64); ok {
				current["windspeed_mph"] = math.Round(wind*2.23694*10) / 10
			}
		}

		units := "metric"
		if wantImperial {
			units = "imperial"
		}
		return map[string]any{
			"location": map[string]any{
				"name":      loc.Name,
				"country":   loc.Country,
				"latitude":  loc.Latitude,
				"longitude": loc.Longitude,
			},
			"current_weather": current,
			"units":           units,
			"source":          "open-meteo.com (no API key required)",
		}, nil
	})
}

type geocodeReq struct {
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Limit       int    `json:"limit"`
	Language    string `json:"language"`
}

func registerGeocodeTool(srv *mcp.Server, client *http.Client) {
	tool := &mcp.Tool{
		Name:        "geocode",
		Description: "Geocode a city name to lat/lon using Open-Meteo.",
		InputSchema: inputSchema(map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City name to geocode, e.g. 'Tokyo' or 'Dallas,US'",
			},
			"country_code": map[string]any{
				"type":        "string",
				"description": "Optional country code to disambiguate the city",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Max results to return (1-10)",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Optional language code for results, e.g. 'en'",
			},
		}, []string{"city"}),
	}

	register(srv, tool, func(ctx context.Context, req geocodeReq) (any, error) {
		city := strings.TrimSpace(req.City)
		country := strings.ToUpper(strings.TrimSpace(req.CountryCode))
		// Accept "Dallas,US" style input and split out the country code.
		if strings.Contains(city, ",") {
			parts := strings.Split(city, ",")
			city = strings.TrimSpace(parts[0])
			if country == "" && len(parts) >= 2 {
				candidate := strings.TrimSpace(parts[len(parts)-1])
				if len(candidate) == 2 {
					country = strings.ToUpper(candidate)
				}
			}
		}

		limit := req.Limit
		if limit < 1 {
			limit = 5
		}
		if limit > 10 {
			limit = 10
		}

		params := url.Values{"name": {city}, "count": {strconv.Itoa(limit)}}
		if country != "" {
			params.Set("country", country)
		}
		if req.Language != "" {
			params.Set("language", strings.TrimSpace(req.Language))
		}

		var geo geoResponse
		if err := getJSON(ctx, client, geocodeURL, params, &geo); err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(geo.Results))
		for _, item := range geo.Results {
			results = append(results, map[string]any{
				"name":         item.Name,
				"latitude":     item.Latitude,
				"longitude":    item.Longitude,
				"country":      item.Country,
				"country_code": item.CountryCode,
				"admin1":       item.Admin1,
				"admin2":       item.Admin2,
				"timezone":     item.Timezone,
				"population":   item.Population,
			})
		}
		return map[string]any{
			"query":        city,
			"country_code": country,
			"results":      results,
			"source":       "open-meteo.com (no API key required)",
		}, nil
	})
}

type forecastReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Days      int     `json:"days"`
	Units     string  `json:"units"`
	Timezone  string  `json:"timezone"`
}

func registerForecastTool(srv *mcp.Server, client *http.Client) {
	tool := &mcp.Tool{
		Name:        "weather_forecast",
		Description: "Fetch a multi-day forecast for a lat/lon using Open-Meteo.",
		InputSchema: inputSchema(map[string]any{
			"latitude": map[string]any{
				"type":        "number",
				"description": "Latitude of the location",
			},
			"longitude": map[string]any{
				"type":        "number",
				"description": "Longitude of the location",
			},
			"days": map[string]any{
				"type":        "integer",
				"description": "Number of forecast days (1-16)",
			},
			"units": map[string]any{
				"type":        "string",
				"description": "Units system: 'metric' (C, m/s) or 'imperial' (F, mph).",
			},
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA timezone for daily buckets; defaults to auto",
			},
		}, []string{"latitude", "longitude"}),
	}

	register(srv, tool, func(ctx context.Context, req forecastReq) (any, error) {
		days := req.Days
		if days < 1 {
			days = 7
		}
		if days > 16 {
			days = 16
		}
		tz := strings.TrimSpace(req.Timezone)
		if tz == "" {
			tz = "auto"
		}

		params := url.Values{
			"latitude":  {formatFloat(req.Latitude)},
			"longitude": {formatFloat(req.Longitude)},
			"daily": {strings.Join([]string{
				"temperature_2m_max",
				"temperature_2m_min",
				"precipitation_probability_max",
				"precipitation_sum",
				"weathercode",
			}, ",")},
			"forecast_days": {strconv.Itoa(days)},
			"timezone":      {tz},
		}
		if strings.HasPrefix(strings.ToLower(req.Units), "imp") {
			params.Set("temperature_unit", "fahrenheit")
			params.Set("windspeed_unit", "mph")
			params.Set("precipitation_unit", "inch")
		}

		var data struct {
			Timezone   string           `json:"timezone"`
			DailyUnits map[string]any   `json:"daily_units"`
			Daily      map[string][]any `json:"daily"`
		}
		if err := getJSON(ctx, client, forecastURL, params, &data); err != nil {
			return nil, err
		}

		times := data.Daily["time"]
		forecast := make([]map[string]any, 0, len(times))
		for idx, day := range times {
			forecast = append(forecast, map[string]any{
				"date":                          day,
				"temperature_max":               valueAt(data.Daily["temperature_2m_max"], idx),
				"temperature_min":               valueAt(data.Daily["temperature_2m_min"], idx),
				"precipitation_probability_max": valueAt(data.Daily["precipitation_probability_max"], idx),
				"precipitation_sum":             valueAt(data.Daily["precipitation_sum"], idx),
				"weathercode":                   valueAt(data.Daily["weathercode"], idx),
			})
		}

		return map[string]any{
			"location": map[string]any{
				"latitude":  req.Latitude,
				"longitude": req.Longitude,
			},
			"timezone": data.Timezone,
			"units":    data.DailyUnits,
			"forecast": forecast,
			"source":   "open-meteo.com (no API key required)",
		}, nil
	})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func valueAt(values []any, idx int) any {
	if idx >= len(values) {
		return nil
	}
	return values[idx]
}
