package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientIdleTTL 閒置超過此時間的客戶端限流器會被移除
const clientIdleTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 依客戶端 IP 分別限流的令牌桶
type RateLimiter struct {
	mu        sync.Mutex
	interval  time.Duration
	burst     int
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter 創建限流器：每 window 允許 requests 個請求，最多累積 burst 個
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = requests
	}
	return &RateLimiter{
		interval: window / time.Duration(requests),
		burst:    burst,
		clients:  make(map[string]*client),
		now:      time.Now,
	}
}

// Allow 檢查 key 是否還有可用令牌
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	cl, ok := rl.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep 移除閒置的客戶端，呼叫時需持有鎖
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < clientIdleTTL {
		return
	}
	rl.lastSweep = now
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > clientIdleTTL {
			delete(rl.clients, key)
		}
	}
}

// RetryAfter 取得一個令牌所需的秒數（至少 1 秒）
func (rl *RateLimiter) RetryAfter() int {
	return int(math.Max(1, math.Ceil(rl.interval.Seconds())))
}

// RateLimit 限流中間件，未啟用時直接放行
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(cfg.Requests, cfg.Window, cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			retryAfter := limiter.RetryAfter()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        common.ErrCodeTooManyRequests,
				"message":     "Too many requests",
				"retry_after": retryAfter,
				"request_id":  requestid.Get(c),
			})
			return
		}

		c.Next()
	}
}
