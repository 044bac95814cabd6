package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const overpassBaseURL = "https://overpass-api.de"

// metroSearchRadiusM bounds the Overpass query around the venue.
const metroSearchRadiusM = 5000

// Average speeds used to turn distance into minutes: 4.8 km/h on foot,
// 30 km/h by auto-rickshaw.
const (
	walkingKmPerMin = 0.08
	autoKmPerMin    = 0.5
)

// MetroClient finds the nearest subway station via the Overpass API.
type MetroClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewMetroClient() *MetroClient {
	return &MetroClient{
		httpClient: &http.Client{Timeout: 25 * time.Second},
		baseURL:    overpassBaseURL,
	}
}

// NewMetroClientWithBaseURL is used by tests to point at a fake server.
func NewMetroClientWithBaseURL(baseURL string) *MetroClient {
	c := NewMetroClient()
	c.baseURL = baseURL
	return c
}

type overpassResponse struct {
	Elements []struct {
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearest returns the closest station within the search radius.
// ErrNoResult means the network answered but no station is nearby.
func (c *MetroClient) Nearest(ctx context.Context, lat, lon float64) (*MetroStation, error) {
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["railway"="station"]["station"="subway"](around:%d,%f,%f);
  node["railway"="subway_entrance"](around:%d,%f,%f);
  node["station"="subway"](around:%d,%f,%f);
);
out body;`,
		metroSearchRadiusM, lat, lon,
		metroSearchRadiusM, lat, lon,
		metroSearchRadiusM, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/interpreter", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("overpass: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}

	var or overpassResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("overpass: unmarshal response: %w", err)
	}
	if len(or.Elements) == 0 {
		return nil, ErrNoResult
	}

	nearest := or.Elements[0]
	nearestDist := haversineKm(lat, lon, nearest.Lat, nearest.Lon)
	for _, el := range or.Elements[1:] {
		if d := haversineKm(lat, lon, el.Lat, el.Lon); d < nearestDist {
			nearest, nearestDist = el, d
		}
	}

	name := nearest.Tags["name"]
	if name == "" {
		name = "Unknown Station"
	}

	return &MetroStation{
		StationName:     name,
		DistanceKm:      round2(nearestDist),
		WalkingTimeMins: int(nearestDist/walkingKmPerMin + 0.5),
		AutoTimeMins:    int(nearestDist/autoKmPerMin + 0.5),
		Latitude:        nearest.Lat,
		Longitude:       nearest.Lon,
		DirectionsLink: fmt.Sprintf(
			"https://www.google.com/maps/dir/?api=1&destination=%f,%f",
			nearest.Lat, nearest.Lon),
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
