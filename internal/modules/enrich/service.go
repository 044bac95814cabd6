package enrich

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"venuetraffic/internal/config"
	"venuetraffic/internal/metrics"
)

// Service fans out the optional situational lookups for a venue. Every lookup
// is best-effort: a failure logs, bumps a metric and leaves its field nil, so
// enrichment can never fail a prediction request.
type Service struct {
	geocoder Geocoder
	weather  *WeatherClient
	metro    *MetroClient
	traffic  *MapplsClient
	search   *EventSearchClient
	timeout  time.Duration
	log      *zap.Logger
}

// New wires the lookup clients from config. Clients whose credentials are
// absent stay nil and are skipped at collection time.
func New(cfg config.EnrichConfig, log *zap.Logger) (*Service, error) {
	s := &Service{
		metro:   NewMetroClient(),
		search:  NewEventSearchClient(),
		timeout: cfg.Timeout,
		log:     log,
	}

	if cfg.GoogleMapsKey != "" {
		g, err := NewGoogleGeocoder(cfg.GoogleMapsKey)
		if err != nil {
			return nil, err
		}
		s.geocoder = g
	} else {
		s.geocoder = NewNominatimGeocoder()
	}

	if cfg.OpenWeatherKey != "" {
		s.weather = NewWeatherClient(cfg.OpenWeatherKey)
	}
	if cfg.MapplsClientID != "" && cfg.MapplsSecret != "" {
		s.traffic = NewMapplsClient(cfg.MapplsClientID, cfg.MapplsSecret)
	}
	return s, nil
}

// NewWithClients is used by tests to inject fake-server-backed clients.
func NewWithClients(geocoder Geocoder, weather *WeatherClient, metro *MetroClient,
	traffic *MapplsClient, search *EventSearchClient, timeout time.Duration, log *zap.Logger) *Service {
	return &Service{
		geocoder: geocoder,
		weather:  weather,
		metro:    metro,
		traffic:  traffic,
		search:   search,
		timeout:  timeout,
		log:      log,
	}
}

// LiveEvents fetches fresh search context to embed in the prompt.
// Best-effort: any failure yields an empty string.
func (s *Service) LiveEvents(ctx context.Context, venue string) string {
	if s.search == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.search.Search(ctx, venue)
	if err != nil {
		metrics.EnrichmentFailures.WithLabelValues("livesearch").Inc()
		s.log.Warn("live event search failed", zap.String("venue", venue), zap.Error(err))
		return ""
	}
	return out
}

// Collect geocodes the venue and gathers weather, metro, and live-traffic data
// concurrently. Returns nil when the venue cannot be located; otherwise a
// Result with whatever lookups succeeded.
func (s *Service) Collect(ctx context.Context, venue string) *Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	loc, err := s.geocoder.Geocode(ctx, venue)
	if err != nil {
		if !errors.Is(err, ErrNoResult) {
			metrics.EnrichmentFailures.WithLabelValues("geocode").Inc()
		}
		s.log.Warn("geocoding failed, skipping location enrichment",
			zap.String("venue", venue), zap.Error(err))
		return nil
	}

	res := &Result{Location: loc}

	g, gctx := errgroup.WithContext(ctx)
	if s.weather != nil {
		g.Go(func() error {
			w, err := s.weather.Current(gctx, loc.Latitude, loc.Longitude)
			if err != nil {
				metrics.EnrichmentFailures.WithLabelValues("weather").Inc()
				s.log.Warn("weather lookup failed", zap.Error(err))
				return nil
			}
			res.Weather = w
			return nil
		})
	}
	if s.metro != nil {
		g.Go(func() error {
			m, err := s.metro.Nearest(gctx, loc.Latitude, loc.Longitude)
			if err != nil {
				if !errors.Is(err, ErrNoResult) {
					metrics.EnrichmentFailures.WithLabelValues("metro").Inc()
				}
				s.log.Warn("metro lookup failed", zap.Error(err))
				return nil
			}
			res.NearestMetro = m
			return nil
		})
	}
	if s.traffic != nil {
		g.Go(func() error {
			lt, err := s.traffic.Flow(gctx, loc.Latitude, loc.Longitude)
			if err != nil {
				metrics.EnrichmentFailures.WithLabelValues("mappls").Inc()
				s.log.Warn("live traffic lookup failed", zap.Error(err))
				return nil
			}
			res.LiveTraffic = lt
			return nil
		})
	}
	_ = g.Wait()

	return res
}
