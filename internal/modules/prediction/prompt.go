package prediction

import (
	"fmt"
	"time"
)

// BuildPrompt constructs the full instruction text for one venue.
// It is a pure function of its arguments: the date is passed in explicitly
// (never read from a clock here) so identical inputs always yield an identical
// prompt. liveData is optional search context; empty means none available.
func BuildPrompt(venue string, date time.Time, liveData string) string {
	if liveData == "" {
		liveData = "No reliable live data found."
	}

	return fmt.Sprintf(`You are a Smart City Traffic Intelligence system. Given a venue, predict
the traffic surge around it for today.

STRICT OUTPUT RULES:
- Return ONLY valid JSON
- No explanation
- No markdown
- No extra text outside JSON
- Follow the schema EXACTLY

TODAY'S DATE: %s (%s)

VENUE NAME: %s

LIVE SEARCH DATA:
%s

Output JSON structure EXACTLY:
{
  "venue": {
    "name": "full venue name",
    "city": "city the venue is in",
    "type": "stadium | college | concert_hall | festival_ground | transit_hub | hospital | mall | other",
    "capacity": "estimated max capacity e.g. 45,000",
    "description": "one sentence about the venue"
  },
  "event_context": {
    "likely_event_today": "named events today, comma-separated, or NO EVENTS",
    "day_of_week": "%s",
    "estimated_attendance": "estimated crowd today",
    "weather_note": "short note if weather is relevant"
  },
  "traffic_prediction": {
    "severity": "LOW | MODERATE | HIGH | CRITICAL",
    "congestion_index": 0-100,
    "confidence": 0-100,
    "summary": "one sentence summary",
    "peak_period": {
      "start": "HH:MM",
      "end": "HH:MM",
      "label": "e.g. 6:30 PM - 9:00 PM",
      "description": "why this window is worst"
    },
    "pre_surge_starts": "HH:MM",
    "post_surge_clears": "HH:MM"
  },
  "impact_zones": [
    { "radius": "0-500m", "level": 0-100, "roads_affected": "specific road names near venue" },
    { "radius": "500m-2km", "level": 0-100, "roads_affected": "major connecting roads and junctions" }
  ],
  "alerts": ["short actionable alert strings"],
  "recommendations": {
    "best_arrival_window": "e.g. before 16:30",
    "avoid_roads": ["road names"],
    "transit_options": ["metro / bus / rail options"]
  }
}

Use 24-hour HH:MM for all times. severity must be exactly one of the four
listed values. congestion_index and confidence must be integers 0-100.
If no events are found say NO EVENTS, do not invent any.`,
		date.Format("02 January 2006"),
		date.Weekday().String(),
		venue,
		liveData,
		date.Weekday().String(),
	)
}
