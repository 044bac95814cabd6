package enrich

// Result carries supplementary situational data attached alongside a
// prediction. Every field is optional; a lookup that fails simply leaves its
// field nil.
type Result struct {
	Location     *Location     `json:"location,omitempty"`
	Weather      *Weather      `json:"weather,omitempty"`
	NearestMetro *MetroStation `json:"nearest_metro_station,omitempty"`
	LiveTraffic  *LiveTraffic  `json:"live_traffic,omitempty"`
}

// Location is the geocoded position of the venue.
type Location struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	GoogleMapsLink string  `json:"google_maps_link"`
}

// Weather summarizes current conditions plus a derived traffic-impact note.
type Weather struct {
	Condition        string  `json:"condition"`
	TemperatureC     float64 `json:"temperature_c"`
	FeelsLikeC       float64 `json:"feels_like_c"`
	HumidityPercent  int     `json:"humidity_percent"`
	WindSpeedKmh     float64 `json:"wind_speed_kmh"`
	VisibilityKm     float64 `json:"visibility_km"`
	RainLastHourMm   float64 `json:"rain_last_1h_mm"`
	TrafficImpact    string  `json:"traffic_weather_impact"`
}

// MetroStation is the nearest subway station within search radius.
type MetroStation struct {
	StationName     string  `json:"station_name"`
	DistanceKm      float64 `json:"distance_km"`
	WalkingTimeMins int     `json:"walking_time_mins"`
	AutoTimeMins    int     `json:"auto_time_mins"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lon"`
	DirectionsLink  string  `json:"google_maps_link"`
}

// LiveTraffic reports current road conditions around the venue.
type LiveTraffic struct {
	DistanceKm      float64 `json:"distance_km"`
	TravelTimeMin   float64 `json:"travel_time_min"`
	TrafficDelayMin float64 `json:"traffic_delay_min"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
	CongestionLevel string  `json:"congestion_level"`
}
