package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoResult means the geocoder answered but found nothing for the query.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves a free-text venue name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Location, error)
}

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder is the keyless fallback geocoder.
type NominatimGeocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewNominatimGeocoder() *NominatimGeocoder {
	return &NominatimGeocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    nominatimBaseURL,
		userAgent:  "VenueTrafficAI/1.0",
	}
}

// NewNominatimGeocoderWithBaseURL is used by tests to point at a fake server.
func NewNominatimGeocoderWithBaseURL(baseURL string) *NominatimGeocoder {
	g := NewNominatimGeocoder()
	g.baseURL = baseURL
	return g
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nominatim: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim: unexpected status %d", resp.StatusCode)
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("nominatim: unmarshal response: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: bad latitude %q", hits[0].Lat)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: bad longitude %q", hits[0].Lon)
	}
	return newLocation(lat, lon), nil
}

// GoogleGeocoder resolves venues through the Google Maps Geocoding API.
// Used when a Maps API key is configured.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	loc := results[0].Geometry.Location
	return newLocation(loc.Lat, loc.Lng), nil
}

func newLocation(lat, lon float64) *Location {
	return &Location{
		Latitude:       lat,
		Longitude:      lon,
		GoogleMapsLink: fmt.Sprintf("https://www.google.com/maps?q=%f,%f", lat, lon),
	}
}
