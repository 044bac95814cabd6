package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"venuetraffic/internal/metrics"
	"venuetraffic/internal/modules/enrich"
	"venuetraffic/internal/modules/prediction"
)

// PredictHandler serves the surge forecast endpoints. The prediction service
// is nil when no LLM key is configured; the handler then answers 503 without
// touching anything upstream. The enrichment service is nil when disabled.
type PredictHandler struct {
	svc    *prediction.Service
	enrich *enrich.Service
	now    func() time.Time
	log    *zap.Logger
}

func NewPredictHandler(svc *prediction.Service, enrichSvc *enrich.Service, log *zap.Logger) *PredictHandler {
	return &PredictHandler{
		svc:    svc,
		enrich: enrichSvc,
		now:    time.Now,
		log:    log,
	}
}

type predictRequest struct {
	Venue string `json:"venue"`
}

// PredictPOST handles POST /predict with a JSON body {"venue": "..."}.
func (h *PredictHandler) PredictPOST(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.PredictRequests.WithLabelValues("bad_input").Inc()
		writeFailure(c, http.StatusBadRequest, "", "invalid_request_body")
		return
	}
	h.handle(c, req.Venue)
}

// PredictGET handles GET /predict?venue=... for quick manual checks.
func (h *PredictHandler) PredictGET(c *gin.Context) {
	h.handle(c, c.Query("venue"))
}

func (h *PredictHandler) handle(c *gin.Context, rawVenue string) {
	venue, err := prediction.NormalizeVenue(rawVenue)
	if err != nil {
		metrics.PredictRequests.WithLabelValues("bad_input").Inc()
		writeFailure(c, http.StatusBadRequest, rawVenue, venueErrorCategory(err))
		return
	}

	if h.svc == nil {
		metrics.PredictRequests.WithLabelValues("unconfigured").Inc()
		writeFailure(c, http.StatusServiceUnavailable, venue, "llm_key_not_configured")
		return
	}

	ctx := c.Request.Context()

	var liveData string
	if h.enrich != nil {
		liveData = h.enrich.LiveEvents(ctx, venue)
	}

	data, warnings, err := h.svc.Predict(ctx, venue, h.now(), liveData)
	if err != nil {
		status, category := predictErrorStatus(err)
		metrics.PredictRequests.WithLabelValues(category).Inc()
		writeFailure(c, status, venue, category)
		return
	}

	env := PredictionEnvelope{
		Success:    true,
		VenueQuery: venue,
		Data:       data,
		Degraded:   len(warnings) > 0,
		Warnings:   warnings,
	}
	if h.enrich != nil {
		env.Enrichment = h.enrich.Collect(ctx, venue)
	}

	if env.Degraded {
		metrics.PredictRequests.WithLabelValues("degraded").Inc()
	} else {
		metrics.PredictRequests.WithLabelValues("ok").Inc()
	}
	writeJSON(c, http.StatusOK, env)
}

func venueErrorCategory(err error) string {
	if errors.Is(err, prediction.ErrVenueTooLong) {
		return "venue_too_long"
	}
	return "empty_venue"
}
