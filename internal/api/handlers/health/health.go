package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-clipper/internal/api/handlers"
	"recipe-clipper/internal/core/ai/cache"
	"recipe-clipper/internal/core/queue"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查等待儲存回應的時間
const readyTimeout = 2 * time.Second

// Pinger 檢查依賴服務是否可用
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	AI        *AIStatus              `json:"ai,omitempty"`
}

// AIStatus 模型擷取狀態
type AIStatus struct {
	Enabled bool        `json:"enabled"`
	Cache   cache.Stats `json:"cache"`
}

// AIStatusProvider 提供模型擷取狀態
type AIStatusProvider interface {
	Enabled() bool
	CacheStats() cache.Stats
}

// Handler 健康檢查處理器
type Handler struct {
	store Pinger
	queue *queue.Manager
	ai    AIStatusProvider
}

// NewHandler 創建健康檢查處理器，queue 與 ai 可為 nil
func NewHandler(store Pinger, q *queue.Manager, ai AIStatusProvider) *Handler {
	return &Handler{store: store, queue: q, ai: ai}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		handlers.RespondError(c, common.ErrInternalError)
		return
	}
	appConfig, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		handlers.RespondError(c, common.ErrInternalError)
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   appConfig.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.ai != nil {
		response.AI = &AIStatus{Enabled: h.ai.Enabled(), Cache: h.ai.CacheStats()}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：儲存可用才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"store":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"store":  "ok",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
