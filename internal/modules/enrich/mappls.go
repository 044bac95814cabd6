package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	mapplsTokenURL = "https://outpost.mappls.com/api/security/oauth/token"
	mapplsBaseURL  = "https://apis.mappls.com"
)

// routeProbeOffsetDeg shifts the probe destination ~2 km northeast so the
// route samples the roads immediately around the venue.
const routeProbeOffsetDeg = 0.02

// MapplsClient fetches live traffic conditions around a point by routing a
// short probe trip with traffic enabled.
type MapplsClient struct {
	httpClient   *http.Client
	tokenURL     string
	baseURL      string
	clientID     string
	clientSecret string
}

func NewMapplsClient(clientID, clientSecret string) *MapplsClient {
	return &MapplsClient{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokenURL:     mapplsTokenURL,
		baseURL:      mapplsBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// NewMapplsClientWithBaseURLs is used by tests to point at fake servers.
func NewMapplsClientWithBaseURLs(clientID, clientSecret, tokenURL, baseURL string) *MapplsClient {
	c := NewMapplsClient(clientID, clientSecret)
	c.tokenURL = tokenURL
	c.baseURL = baseURL
	return c
}

// token obtains a short-lived OAuth access token via client credentials.
func (c *MapplsClient) token(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mappls: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mappls: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mappls: read token response: %w", err)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("mappls: unmarshal token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("mappls: no access token in response")
	}
	return tr.AccessToken, nil
}

type mapplsRouteResponse struct {
	Routes []struct {
		Distance               float64 `json:"distance"`
		Duration               float64 `json:"duration"`
		DurationWithoutTraffic float64 `json:"duration_without_traffic"`
	} `json:"routes"`
}

// Flow reports current congestion on a short probe route from the venue.
func (c *MapplsClient) Flow(ctx context.Context, lat, lon float64) (*LiveTraffic, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	destLat := lat + routeProbeOffsetDeg
	destLon := lon + routeProbeOffsetDeg
	u := fmt.Sprintf("%s/advancedmaps/v1/%s/route_adv/driving/%f,%f;%f,%f?traffic=true&steps=false&resource=route_eta",
		c.baseURL, token, lon, lat, destLon, destLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("mappls: build route request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mappls: route request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mappls: read route response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mappls: unexpected status %d", resp.StatusCode)
	}

	var rr mapplsRouteResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("mappls: unmarshal route response: %w", err)
	}
	if len(rr.Routes) == 0 {
		return nil, ErrNoResult
	}

	route := rr.Routes[0]
	distanceKm := route.Distance / 1000
	durationMin := route.Duration / 60
	baselineMin := route.DurationWithoutTraffic / 60
	if baselineMin == 0 {
		baselineMin = durationMin
	}
	delayMin := durationMin - baselineMin
	if delayMin < 0 {
		delayMin = 0
	}

	var avgSpeed float64
	if durationMin > 0 {
		avgSpeed = distanceKm / (durationMin / 60)
	}

	return &LiveTraffic{
		DistanceKm:      round2(distanceKm),
		TravelTimeMin:   round1(durationMin),
		TrafficDelayMin: round1(delayMin),
		AverageSpeedKmh: round1(avgSpeed),
		CongestionLevel: congestionLevel(delayMin),
	}, nil
}

// congestionLevel grades the delay on the ~2 km probe route.
func congestionLevel(delayMin float64) string {
	switch {
	case delayMin > 10:
		return "CRITICAL"
	case delayMin > 5:
		return "HIGH"
	case delayMin > 2:
		return "MODERATE"
	default:
		return "LOW"
	}
}
