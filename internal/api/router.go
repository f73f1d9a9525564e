package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recipe-clipper/internal/api/handlers"
	"recipe-clipper/internal/api/handlers/health"
	recipeHandler "recipe-clipper/internal/api/handlers/recipe"
	"recipe-clipper/internal/api/middleware"
	"recipe-clipper/internal/core/ai/service"
	"recipe-clipper/internal/core/clipper"
	"recipe-clipper/internal/core/queue"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultTimeout 未設定 write_timeout 時的請求超時
const defaultTimeout = 120 * time.Second

// Dependencies 路由使用的服務；AI 與 Queue 可為 nil
type Dependencies struct {
	Clipper *clipper.Service
	AI      *service.Service
	Queue   *queue.Manager
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Clipper == nil {
		return nil, errors.New("clipper service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 請求 ID 需在日誌之前產生
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimit))
	router.Use(middleware.Deduplication(cfg.DedupWindow))

	timeout := cfg.Server.WriteTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	router.Use(requestContext(cfg, timeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(deps.Clipper, deps.Queue, deps.AI)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	clipHandler := recipeHandler.NewHandler(deps.Clipper, cfg.Queue.MaxBatch)
	aiHandler := handlers.NewAIHandler(deps.AI)

	// API 路由組
	api := router.Group("/api/v1")
	{
		clipGroup := api.Group("/clip")
		{
			clipGroup.POST("", clipHandler.HandleClip)
			clipGroup.POST("/batch", clipHandler.HandleBatch)
			clipGroup.GET("/stats", clipHandler.HandleStats)
			clipGroup.DELETE("/stats", clipHandler.HandleResetStats)
		}

		extractGroup := api.Group("/extract")
		{
			extractGroup.POST("/markup", clipHandler.HandleExtractMarkup)
			extractGroup.POST("/ai", aiHandler.ExtractEnvelope)
			extractGroup.POST("/page", aiHandler.ExtractPage)
		}

		api.GET("/duration", clipHandler.HandleDuration)
		api.GET("/ai/cache/stats", aiHandler.CacheStats)

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("", clipHandler.HandleList)
			recipeGroup.GET("/:id", clipHandler.HandleGet)
			recipeGroup.DELETE("/:id", clipHandler.HandleDelete)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("ai_enabled", deps.AI.Enabled()),
		zap.Bool("queue_enabled", deps.Queue != nil),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
	)

	return router, nil
}

// corsConfig 含 "*" 時允許所有來源（此時不允許攜帶憑證）
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// requestContext 設置請求超時並注入設定
func requestContext(cfg *config.Config, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		// handler 尚未回應且已超時時才補上 504
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:      common.ErrCodeRequestTimeout,
				Message:   "Request timeout",
				Details:   timeout.String(),
				RequestID: requestid.Get(c),
			})
		}
	}
}
