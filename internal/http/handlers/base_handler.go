// README: Base handler utilities (envelope types, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"venuetraffic/internal/ai"
	"venuetraffic/internal/modules/enrich"
	"venuetraffic/internal/modules/prediction"
)

// PredictionEnvelope is the uniform response wrapper for /predict.
// Exactly one of Data/Error is set depending on Success. Degraded marks a
// salvaged reply: usable Data that needed repairs, listed in Warnings.
type PredictionEnvelope struct {
	Success    bool             `json:"success"`
	VenueQuery string           `json:"venue_query"`
	Data       *prediction.Data `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Degraded   bool             `json:"degraded,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
	Enrichment *enrich.Result   `json:"enrichment,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeFailure(c *gin.Context, status int, venueQuery, category string) {
	writeJSON(c, status, PredictionEnvelope{
		Success:    false,
		VenueQuery: venueQuery,
		Error:      category,
	})
}

// predictErrorStatus maps an upstream or validation failure to an HTTP status
// and the human-readable error category surfaced to the caller. Raw upstream
// detail never reaches the client.
func predictErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrTimeout):
		return http.StatusBadGateway, "upstream_timeout"
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests, "upstream_rate_limited"
	case errors.Is(err, ai.ErrAuthRejected):
		return http.StatusUnauthorized, "upstream_auth_rejected"
	case errors.Is(err, ai.ErrUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, prediction.ErrMalformedJSON):
		return http.StatusUnprocessableEntity, "invalid_llm_response"
	case errors.Is(err, prediction.ErrIncompleteResponse):
		return http.StatusUnprocessableEntity, "incomplete_llm_response"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusBadGateway, "upstream_timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
