package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"
)

const openWeatherBaseURL = "https://api.openweathermap.org"

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    openWeatherBaseURL,
		apiKey:     apiKey,
	}
}

// NewWeatherClientWithBaseURL is used by tests to point at a fake server.
func NewWeatherClientWithBaseURL(apiKey, baseURL string) *WeatherClient {
	c := NewWeatherClient(apiKey)
	c.baseURL = baseURL
	return c
}

type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Visibility int `json:"visibility"`
	Cod        any `json:"cod"`
}

// Current returns conditions at the coordinates with a derived traffic note.
func (c *WeatherClient) Current(ctx context.Context, lat, lon float64) (*Weather, error) {
	u := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&appid=%s&units=metric",
		c.baseURL, lat, lon, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var ow openWeatherResponse
	if err := json.Unmarshal(body, &ow); err != nil {
		return nil, fmt.Errorf("weather: unmarshal response: %w", err)
	}
	if len(ow.Weather) == 0 {
		return nil, fmt.Errorf("weather: empty conditions array")
	}

	visibility := ow.Visibility
	if visibility == 0 {
		visibility = 10000
	}

	return &Weather{
		Condition:       titleCase(ow.Weather[0].Description),
		TemperatureC:    ow.Main.Temp,
		FeelsLikeC:      ow.Main.FeelsLike,
		HumidityPercent: ow.Main.Humidity,
		WindSpeedKmh:    round1(ow.Wind.Speed * 3.6),
		VisibilityKm:    round1(float64(visibility) / 1000),
		RainLastHourMm:  ow.Rain.OneHour,
		TrafficImpact:   trafficImpact(ow.Weather[0].Main, ow.Main.Temp),
	}, nil
}

// trafficImpact grades how much the current weather will slow traffic.
func trafficImpact(condition string, tempC float64) string {
	switch strings.ToLower(condition) {
	case "thunderstorm", "tornado":
		return "SEVERE - Expect major delays and road closures"
	case "rain", "drizzle", "snow":
		return "HIGH - Wet roads, reduced visibility, slower traffic"
	case "mist", "fog", "haze", "smoke":
		return "MODERATE - Low visibility may slow down traffic"
	}
	if tempC > 38 {
		return "LOW-MODERATE - Extreme heat may affect peak hour traffic"
	}
	return "LOW - Weather conditions are favorable for travel"
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// titleCase uppercases the first letter of each word ("light rain" -> "Light Rain").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
