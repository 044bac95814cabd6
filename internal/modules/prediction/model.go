package prediction

// Severity levels for the traffic forecast. The model is prompted with this
// closed set; validation normalizes anything else onto it.
const (
	SeverityLow      = "LOW"
	SeverityModerate = "MODERATE"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Data is the normalized traffic-surge forecast for one venue.
// It exists only for the duration of a request and is never mutated after
// validation.
type Data struct {
	Venue             VenueInfo         `json:"venue"`
	EventContext      *EventContext     `json:"event_context,omitempty"`
	TrafficPrediction TrafficPrediction `json:"traffic_prediction"`
	ImpactZones       []ImpactZone      `json:"impact_zones"`
	Alerts            []string          `json:"alerts"`
	Recommendations   *Recommendations  `json:"recommendations,omitempty"`
}

// VenueInfo describes the venue as understood by the model.
type VenueInfo struct {
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	Type        string `json:"type,omitempty"`
	Capacity    string `json:"capacity,omitempty"`
	Description string `json:"description,omitempty"`
}

// EventContext captures what is likely happening at the venue today.
type EventContext struct {
	LikelyEventToday    string `json:"likely_event_today,omitempty"`
	DayOfWeek           string `json:"day_of_week,omitempty"`
	EstimatedAttendance string `json:"estimated_attendance,omitempty"`
	WeatherNote         string `json:"weather_note,omitempty"`
}

// TrafficPrediction is the core forecast block. Time-like fields are pointers:
// nil means the model's value was missing or malformed and was dropped.
type TrafficPrediction struct {
	Severity        string      `json:"severity"`
	CongestionIndex float64     `json:"congestion_index"`
	Confidence      float64     `json:"confidence"`
	Summary         string      `json:"summary,omitempty"`
	PeakPeriod      *PeakPeriod `json:"peak_period,omitempty"`
	PreSurgeStarts  *string     `json:"pre_surge_starts"`
	PostSurgeClears *string     `json:"post_surge_clears"`
}

// PeakPeriod bounds the worst congestion window.
type PeakPeriod struct {
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Label       string  `json:"label,omitempty"`
	Description string  `json:"description,omitempty"`
}

// ImpactZone describes congestion in a ring around the venue.
type ImpactZone struct {
	Radius        string  `json:"radius,omitempty"`
	Level         float64 `json:"level"`
	RoadsAffected string  `json:"roads_affected,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// Recommendations for travellers headed to the venue.
type Recommendations struct {
	BestArrivalWindow string   `json:"best_arrival_window,omitempty"`
	AvoidRoads        []string `json:"avoid_roads"`
	TransitOptions    []string `json:"transit_options"`
}
