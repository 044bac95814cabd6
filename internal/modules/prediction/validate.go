package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Fatal validation outcomes. Anything less than these is repaired in place and
// reported as a warning instead of failing the request.
var (
	ErrMalformedJSON      = errors.New("could not parse model output as JSON")
	ErrIncompleteResponse = errors.New("model output missing required section")
)

// requiredSectionsSchema gates the minimum shape a usable reply must have.
// Leaf fields are deliberately absent: those are repaired, not rejected.
const requiredSectionsSchema = `{
  "type": "object",
  "required": ["venue", "traffic_prediction"],
  "properties": {
    "venue": {"type": "object"},
    "traffic_prediction": {"type": "object"}
  }
}`

var clockRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// severityAliases maps values the model likes to use onto the closed enum.
var severityAliases = map[string]string{
	"CLEAR":   SeverityLow,
	"MINIMAL": SeverityLow,
	"MEDIUM":  SeverityModerate,
	"SEVERE":  SeverityCritical,
	"EXTREME": SeverityCritical,
}

// Validate parses raw model output into normalized prediction Data.
//
// The returned warnings list every repair that was applied (clamped numbers,
// dropped time strings, coerced lists, defaulted sections); a non-empty list
// means the result is degraded but still usable. Only unparseable output or a
// missing venue/traffic_prediction section is fatal.
//
// Validate is idempotent: re-validating the JSON serialization of its own
// output yields identical Data.
func Validate(rawText string) (*Data, []string, error) {
	span, ok := extractJSONSpan(rawText)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no JSON object found", ErrMalformedJSON)
	}

	var root map[string]any
	if err := json.Unmarshal([]byte(span), &root); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(requiredSectionsSchema),
		gojsonschema.NewGoLoader(root),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if !result.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIncompleteResponse, result.Errors()[0])
	}

	n := &normalizer{}
	data := &Data{
		Venue:             n.venue(root["venue"]),
		EventContext:      n.eventContext(root["event_context"]),
		TrafficPrediction: n.trafficPrediction(root["traffic_prediction"]),
		ImpactZones:       n.impactZones(root["impact_zones"]),
		Alerts:            n.alerts(root["alerts"]),
		Recommendations:   n.recommendations(root["recommendations"]),
	}
	return data, n.warnings, nil
}

// extractJSONSpan strips code fences and surrounding prose, returning the
// outermost {...} span. LLM output is not guaranteed to be bare JSON even
// when asked nicely.
func extractJSONSpan(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// normalizer walks the parsed tree and accumulates repair warnings.
type normalizer struct {
	warnings []string
}

func (n *normalizer) warnf(format string, args ...any) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) venue(v any) VenueInfo {
	m, ok := v.(map[string]any)
	if !ok {
		// Schema gate guarantees an object, so this is unreachable in practice.
		return VenueInfo{}
	}
	info := VenueInfo{
		Name:        stringField(m, "name"),
		City:        stringField(m, "city"),
		Type:        stringField(m, "type"),
		Capacity:    stringField(m, "capacity"),
		Description: stringField(m, "description"),
	}
	if info.Name == "" {
		n.warnf("venue.name missing")
	}
	return info
}

func (n *normalizer) eventContext(v any) *EventContext {
	if v == nil {
		n.warnf("event_context missing")
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		n.warnf("event_context is not an object, dropped")
		return nil
	}
	return &EventContext{
		LikelyEventToday:    stringField(m, "likely_event_today"),
		DayOfWeek:           stringField(m, "day_of_week"),
		EstimatedAttendance: stringField(m, "estimated_attendance"),
		WeatherNote:         stringField(m, "weather_note"),
	}
}

func (n *normalizer) trafficPrediction(v any) TrafficPrediction {
	m, _ := v.(map[string]any)
	tp := TrafficPrediction{
		Severity:        n.severity(m["severity"]),
		CongestionIndex: n.boundedNumber(m, "congestion_index"),
		Confidence:      n.boundedNumber(m, "confidence"),
		Summary:         stringField(m, "summary"),
		PreSurgeStarts:  n.clock(m["pre_surge_starts"], "pre_surge_starts"),
		PostSurgeClears: n.clock(m["post_surge_clears"], "post_surge_clears"),
	}
	if pp, ok := m["peak_period"].(map[string]any); ok {
		tp.PeakPeriod = &PeakPeriod{
			Start:       n.clock(pp["start"], "peak_period.start"),
			End:         n.clock(pp["end"], "peak_period.end"),
			Label:       stringField(pp, "label"),
			Description: stringField(pp, "description"),
		}
	} else if m["peak_period"] != nil {
		n.warnf("peak_period is not an object, dropped")
	} else {
		n.warnf("peak_period missing")
	}
	return tp
}

// severity case-normalizes against the closed enum, mapping known synonyms
// and clamping anything unrecognized to MODERATE. Clamping rather than
// rejecting keeps an otherwise-useful forecast alive.
func (n *normalizer) severity(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		n.warnf("severity missing, defaulted to %s", SeverityModerate)
		return SeverityModerate
	}
	up := strings.ToUpper(strings.TrimSpace(s))
	switch up {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
		return up
	}
	if mapped, ok := severityAliases[up]; ok {
		n.warnf("severity %q normalized to %s", s, mapped)
		return mapped
	}
	n.warnf("severity %q unrecognized, clamped to %s", s, SeverityModerate)
	return SeverityModerate
}

// boundedNumber reads a numeric field and clamps it into [0,100].
// Models routinely overshoot the range; that is not worth failing over.
func (n *normalizer) boundedNumber(m map[string]any, key string) float64 {
	f, ok := numberValue(m[key])
	if !ok {
		n.warnf("%s missing or non-numeric, defaulted to 0", key)
		return 0
	}
	switch {
	case f < 0:
		n.warnf("%s %v clamped to 0", key, f)
		return 0
	case f > 100:
		n.warnf("%s %v clamped to 100", key, f)
		return 100
	}
	return f
}

// clock validates an HH:MM string, dropping anything that does not match.
// Partial data is still useful, so a bad time never fails the request.
func (n *normalizer) clock(v any, field string) *string {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok || !clockRe.MatchString(strings.TrimSpace(s)) {
		n.warnf("%s is not HH:MM, dropped", field)
		return nil
	}
	t := strings.TrimSpace(s)
	return &t
}

func (n *normalizer) impactZones(v any) []ImpactZone {
	items := n.sequence(v, "impact_zones")
	zones := make([]ImpactZone, 0, len(items))
	for _, item := range items {
		switch z := item.(type) {
		case string:
			zones = append(zones, ImpactZone{Note: z})
		case map[string]any:
			zone := ImpactZone{
				Radius:        stringField(z, "radius"),
				RoadsAffected: stringField(z, "roads_affected"),
				Note:          stringField(z, "note"),
			}
			if lvl, ok := numberValue(z["level"]); ok {
				switch {
				case lvl < 0:
					n.warnf("impact_zones level %v clamped to 0", lvl)
				case lvl > 100:
					n.warnf("impact_zones level %v clamped to 100", lvl)
					zone.Level = 100
				default:
					zone.Level = lvl
				}
			}
			zones = append(zones, zone)
		default:
			n.warnf("impact_zones entry of unexpected type dropped")
		}
	}
	return zones
}

func (n *normalizer) alerts(v any) []string {
	items := n.sequence(v, "alerts")
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch a := item.(type) {
		case string:
			out = append(out, a)
		case map[string]any:
			// Some replies wrap each alert in an object; take its text field.
			for _, key := range []string{"message", "text", "alert"} {
				if s := stringField(a, key); s != "" {
					out = append(out, s)
					break
				}
			}
		default:
			n.warnf("alerts entry of unexpected type dropped")
		}
	}
	return out
}

func (n *normalizer) recommendations(v any) *Recommendations {
	if v == nil {
		n.warnf("recommendations missing")
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		n.warnf("recommendations is not an object, dropped")
		return nil
	}
	return &Recommendations{
		BestArrivalWindow: stringField(m, "best_arrival_window"),
		AvoidRoads:        n.stringList(m["avoid_roads"], "avoid_roads"),
		TransitOptions:    n.stringList(m["transit_options"], "transit_options"),
	}
}

// sequence coerces a value into a slice. A bare scalar where a list was
// expected becomes a one-element list rather than a failure.
func (n *normalizer) sequence(v any, field string) []any {
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		return s
	default:
		n.warnf("%s was not a list, coerced to one element", field)
		return []any{v}
	}
}

func (n *normalizer) stringList(v any, field string) []string {
	items := n.sequence(v, field)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		n.warnf("%s entry of unexpected type dropped", field)
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// numberValue accepts JSON numbers and numeric strings; models use both.
func numberValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(x, "%")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
