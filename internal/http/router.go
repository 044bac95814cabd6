// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venuetraffic/internal/http/handlers"
	"venuetraffic/internal/http/middleware"
	"venuetraffic/internal/modules/enrich"
	"venuetraffic/internal/modules/prediction"
)

type RouterDeps struct {
	Prediction *prediction.Service
	Enrich     *enrich.Service
	LLMKeySet  bool
	Log        *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(deps.Log),
		middleware.RequestID(),
		middleware.Logging(deps.Log),
	)

	predictHandler := handlers.NewPredictHandler(deps.Prediction, deps.Enrich, deps.Log)
	r.POST("/predict", predictHandler.PredictPOST)
	r.GET("/predict", predictHandler.PredictGET)

	healthHandler := handlers.NewHealthHandler(deps.LLMKeySet)
	r.GET("/health", healthHandler.Health)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
