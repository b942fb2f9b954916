package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/metrics"
	"github.com/slicehub/slicehub/internal/pipeline"
	"github.com/slicehub/slicehub/internal/pricing"
	"github.com/slicehub/slicehub/internal/queue"
	"github.com/slicehub/slicehub/internal/ratelimit"
	"github.com/slicehub/slicehub/middleware"
)

// Routes bundles every collaborator Register needs to mount the service's
// routes on a gin.Engine.
type Routes struct {
	Pricing   *pricing.Registry
	Queue     *queue.Queue
	Deps      pipeline.Deps
	ErrorLog  *logger.ErrorLog
	Limiter   *ratelimit.Limiter
	Recorder  *metrics.PrometheusRecorder
	StartedAt time.Time
}

// Register mounts every route the service exposes on engine.
func Register(engine *gin.Engine, r Routes) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerMaterialNameValidator(v)
	}

	pricingCtl := NewPricingController(r.Pricing)
	healthCtl := NewHealthController(r.StartedAt)
	downloadCtl := NewDownloadController(r.Deps.OutputDir)
	sliceCtl := NewSliceController(r.Queue, r.Deps, r.ErrorLog, r.Deps.InputDir)

	engine.GET("/health", healthCtl.Health)
	engine.GET("/metrics", MetricsHandler(r.Recorder))
	engine.GET("/download/:name", downloadCtl.Download)

	engine.GET("/pricing", pricingCtl.GetAll)

	admin := engine.Group("/pricing")
	admin.Use(middleware.RequireAdminKey())
	{
		admin.POST("/:tech", pricingCtl.Create)
		admin.PATCH("/:tech/:material", pricingCtl.Update)
		admin.DELETE("/:tech/:material", pricingCtl.Delete)
	}

	slice := engine.Group("/slice")
	slice.Use(middleware.SliceRateLimit(r.Limiter))
	{
		slice.POST("/FDM", sliceCtl.Slice(domain.FDM))
		slice.POST("/SLA", sliceCtl.Slice(domain.SLA))
	}
}
