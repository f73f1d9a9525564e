package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-clipper/internal/api"
	"recipe-clipper/internal/core/ai/cache"
	"recipe-clipper/internal/core/ai/provider"
	"recipe-clipper/internal/core/ai/service"
	"recipe-clipper/internal/core/clipper"
	"recipe-clipper/internal/core/fetch"
	"recipe-clipper/internal/core/image"
	"recipe-clipper/internal/core/queue"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/infrastructure/store"
	"recipe-clipper/internal/pkg/common"

	"go.uber.org/zap"
)

// shutdownTimeout 等待進行中請求完成的時間
const shutdownTimeout = 15 * time.Second

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("store", cfg.Store.Type),
		zap.Bool("ai_enabled", cfg.AI.Enabled),
		zap.String("ai_model", cfg.AI.Model),
		zap.Bool("image_verify", cfg.Image.Verify),
	)

	// 初始化儲存
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	recipeStore, err := store.New(startCtx, &cfg.Store)
	cancel()
	if err != nil {
		common.LogFatal("Failed to initialize recipe store", zap.Error(err))
	}
	defer recipeStore.Close()

	// 初始化模型回應快取
	cacheManager := cache.NewManager(&cfg.Cache)
	defer cacheManager.Close()

	// 初始化模型擷取（未啟用時 Enabled() 為 false）
	var aiProvider provider.Provider
	if cfg.AI.Enabled {
		aiProvider = provider.NewClient(provider.Config{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			Timeout:    cfg.AI.Timeout,
			MaxRetries: 2,
			BaseURL:    cfg.AI.BaseURL,
			MaxTokens:  cfg.AI.MaxTokens,
		})
		defer aiProvider.Close()
	}
	aiService := service.NewService(&cfg.AI, aiProvider, cacheManager)

	// 圖片檢查為選用
	var prober clipper.ImageProber
	if cfg.Image.Verify {
		prober = image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.Timeout)
	}

	queueManager := queue.NewManager(&cfg.Queue)
	defer queueManager.Close()

	clipperService, err := clipper.NewService(fetch.NewClient(&cfg.Fetch), recipeStore, queueManager, aiService, prober)
	if err != nil {
		common.LogFatal("Failed to initialize clipper service", zap.Error(err))
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Clipper: clipperService,
		AI:      aiService,
		Queue:   queueManager,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("name", cfg.App.Name),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
