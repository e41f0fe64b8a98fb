package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/floorquote/backend/internal/config"
	"github.com/floorquote/backend/internal/http/handlers"
	"github.com/floorquote/backend/internal/http/middleware"

	_ "github.com/floorquote/backend/docs"
)

func Router(cfg config.Config, h *handlers.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = splitOrigins(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/contacts", h.Contacts)
		api.GET("/sessions/:id/report", h.Report)
		api.GET("/analyses/latest", h.LatestAnalysis)
	}

	guarded := api.Group("")
	guarded.Use(middleware.APIKey(cfg.APIKey))
	{
		guarded.POST("/sessions/:id/export", h.UploadExport)
		guarded.POST("/sessions/:id/photo", h.UploadPhoto)
		guarded.POST("/sessions/:id/price", h.AdjustPrice)
		guarded.DELETE("/sessions/:id", h.ResetSession)
		guarded.GET("/sessions/:id/archive", h.ArchiveLink)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
