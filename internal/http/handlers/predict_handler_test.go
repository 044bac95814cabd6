// README: Integration tests for the predict handler error mapping.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"venuetraffic/internal/ai"
	"venuetraffic/internal/http/handlers"
	"venuetraffic/internal/modules/prediction"
)

// goodReply is a complete model answer that validates without repairs.
const goodReply = `{
  "venue": {"name": "Wankhede Stadium", "city": "Mumbai", "type": "stadium"},
  "event_context": {"likely_event_today": "IPL match", "day_of_week": "Saturday"},
  "traffic_prediction": {
    "severity": "HIGH",
    "congestion_index": 82,
    "confidence": 85,
    "summary": "Heavy match-day traffic expected around the stadium.",
    "peak_period": {"start": "18:00", "end": "21:30", "label": "Evening surge"},
    "pre_surge_starts": "17:00",
    "post_surge_clears": "23:00"
  },
  "impact_zones": [{"radius": "2 km", "level": 80, "roads_affected": "Marine Drive"}],
  "alerts": ["Expect delays near Gate 2"],
  "recommendations": {
    "best_arrival_window": "16:00-17:00",
    "avoid_roads": ["D Road"],
    "transit_options": ["Churchgate local"]
  }
}`

// stubProvider counts outbound calls and returns a scripted reply or error.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubProvider) Name() string { return "stub" }

// buildTestRouter wires a minimal Gin engine around the predict handler.
// A nil provider simulates the no-LLM-key deployment.
func buildTestRouter(p ai.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var svc *prediction.Service
	if p != nil {
		svc = prediction.NewService(p, time.Second, 4, zap.NewNop())
	}
	r := gin.New()
	h := handlers.NewPredictHandler(svc, nil, zap.NewNop())
	r.POST("/predict", h.PredictPOST)
	r.GET("/predict", h.PredictGET)
	return r
}

func doPredict(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) handlers.PredictionEnvelope {
	t.Helper()
	var env handlers.PredictionEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, w.Body.String())
	}
	return env
}

// TestPredictPOST_EmptyVenue verifies a blank venue is rejected before any
// upstream call happens.
func TestPredictPOST_EmptyVenue(t *testing.T) {
	stub := &stubProvider{reply: goodReply}
	r := buildTestRouter(stub)

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error != "empty_venue" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if stub.calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", stub.calls)
	}
}

func TestPredictPOST_VenueTooLong(t *testing.T) {
	stub := &stubProvider{reply: goodReply}
	r := buildTestRouter(stub)

	long := bytes.Repeat([]byte("x"), 300)
	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": string(long)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "venue_too_long" {
		t.Errorf("expected venue_too_long, got %q", env.Error)
	}
	if stub.calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", stub.calls)
	}
}

func TestPredictPOST_MalformedBody(t *testing.T) {
	r := buildTestRouter(&stubProvider{reply: goodReply})

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "invalid_request_body" {
		t.Errorf("expected invalid_request_body, got %q", env.Error)
	}
}

func TestPredictGET_Success(t *testing.T) {
	r := buildTestRouter(&stubProvider{reply: goodReply})

	w := doPredict(r, http.MethodGet, "/predict?venue=Wankhede+Stadium", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}
	if env.Degraded {
		t.Errorf("clean reply should not be degraded: %v", env.Warnings)
	}
	if env.Data == nil || env.Data.TrafficPrediction.Severity != prediction.SeverityHigh {
		t.Errorf("unexpected data: %+v", env.Data)
	}
	if env.VenueQuery != "Wankhede Stadium" {
		t.Errorf("expected echoed venue, got %q", env.VenueQuery)
	}
}

// TestPredict_UpstreamTimeout checks the timeout sentinel maps to 502 with
// the upstream_timeout category.
func TestPredict_UpstreamTimeout(t *testing.T) {
	r := buildTestRouter(&stubProvider{err: ai.ErrTimeout})

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error != "upstream_timeout" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.Data != nil {
		t.Error("failure envelope must not carry data")
	}
}

func TestPredict_UpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"rate limited", ai.ErrRateLimited, http.StatusTooManyRequests, "upstream_rate_limited"},
		{"auth rejected", ai.ErrAuthRejected, http.StatusUnauthorized, "upstream_auth_rejected"},
		{"unavailable", ai.ErrUnavailable, http.StatusBadGateway, "upstream_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildTestRouter(&stubProvider{err: tt.err})
			w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if env := decodeEnvelope(t, w); env.Error != tt.wantError {
				t.Errorf("expected %q, got %q", tt.wantError, env.Error)
			}
		})
	}
}

func TestPredict_InvalidModelOutput(t *testing.T) {
	r := buildTestRouter(&stubProvider{reply: "sorry, I cannot answer that"})

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "invalid_llm_response" {
		t.Errorf("expected invalid_llm_response, got %q", env.Error)
	}
}

func TestPredict_IncompleteModelOutput(t *testing.T) {
	r := buildTestRouter(&stubProvider{reply: `{"venue": {"name": "somewhere"}}`})

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "incomplete_llm_response" {
		t.Errorf("expected incomplete_llm_response, got %q", env.Error)
	}
}

// TestPredict_SalvagedReply checks that a repairable reply still returns 200
// but is flagged degraded with the applied repairs listed.
func TestPredict_SalvagedReply(t *testing.T) {
	salvageable := `{
	  "venue": {"name": "Phoenix Mall"},
	  "traffic_prediction": {"severity": "SEVERE", "congestion_index": 150, "confidence": 90, "summary": "busy"}
	}`
	r := buildTestRouter(&stubProvider{reply: salvageable})

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success || !env.Degraded {
		t.Fatalf("expected degraded success, got %+v", env)
	}
	if len(env.Warnings) == 0 {
		t.Error("degraded envelope must list its repairs")
	}
	if env.Data.TrafficPrediction.Severity != prediction.SeverityCritical {
		t.Errorf("SEVERE should normalize to CRITICAL, got %q", env.Data.TrafficPrediction.Severity)
	}
	if env.Data.TrafficPrediction.CongestionIndex != 100 {
		t.Errorf("congestion_index should clamp to 100, got %v", env.Data.TrafficPrediction.CongestionIndex)
	}
}

// TestPredict_NoKeyConfigured verifies the 503 answer when no provider was
// wired at startup.
func TestPredict_NoKeyConfigured(t *testing.T) {
	r := buildTestRouter(nil)

	w := doPredict(r, http.MethodPost, "/predict", map[string]any{"venue": "Phoenix Mall"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error != "llm_key_not_configured" {
		t.Errorf("expected llm_key_not_configured, got %q", env.Error)
	}
}
