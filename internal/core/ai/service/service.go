package service

import (
	"context"
	"errors"
	"fmt"

	"recipe-clipper/internal/core/ai/cache"
	"recipe-clipper/internal/core/ai/provider"
	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"go.uber.org/zap"
)

// extractionInstructions 要求模型以固定欄位輸出單一 JSON 物件
const extractionInstructions = `You extract a single cooking recipe from web page text.
Respond with one JSON object and nothing else, using these keys:
title, description, image_url, author, prepTime, cookTime, totalTime, servings,
recipeCategory, recipeCuisine, keywords, ingredients (array of strings),
instructions (array of strings), nutrition (object).
Times may be ISO-8601 durations or phrases like "1 hour 30 minutes".
If the page does not contain a recipe, respond with null.`

// Service AI 擷取服務：頁面文字 -> 模型 -> 信封 -> 食譜
type Service struct {
	config       *config.AIConfig
	provider     provider.Provider
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務，cacheManager 可為 nil
func NewService(cfg *config.AIConfig, p provider.Provider, cacheManager *cache.CacheManager) *Service {
	return &Service{
		config:       cfg,
		provider:     p,
		cacheManager: cacheManager,
	}
}

// Enabled 是否可呼叫模型
func (s *Service) Enabled() bool {
	return s != nil && s.config.Enabled && s.provider != nil
}

// BuildPrompt 將頁面轉為送給模型的文字
func (s *Service) BuildPrompt(markup, url string) string {
	text := recipe.PageText(markup, s.config.MaxPromptRunes)
	return fmt.Sprintf("URL: %s\n\n%s", url, text)
}

// ExtractFromPage 以模型從頁面擷取食譜
// 模型呼叫失敗回傳錯誤；模型回應無法組裝時回傳 Reason 不為 OK 的 Result
func (s *Service) ExtractFromPage(ctx context.Context, markup, url string) (recipe.Result, error) {
	if !s.Enabled() {
		return recipe.Result{}, common.ErrAIDisabled
	}

	prompt := s.BuildPrompt(markup, url)
	resp, err := s.generate(ctx, prompt)
	if err != nil {
		return recipe.Result{}, err
	}

	result := recipe.ExtractFromAIEnvelopeResult(recipe.WrapEnvelope(resp.Body), url)
	if result.Recipe == nil {
		common.LogInfo("AI extraction rejected",
			zap.String("url", url),
			zap.String("reason", result.Reason.String()),
			zap.String("detail", result.Detail),
		)
	}
	return result, nil
}

// generate 先查快取，未命中才呼叫模型
func (s *Service) generate(ctx context.Context, prompt string) (*provider.Response, error) {
	key := cache.Key(s.provider.GetModel(), prompt)

	if raw, err := s.cacheManager.Get(ctx, key); err == nil {
		if resp, err := provider.DecodeResponse([]byte(raw)); err == nil {
			return resp, nil
		}
	} else if !errors.Is(err, common.ErrCacheMiss) && !errors.Is(err, common.ErrCacheDisabled) {
		common.LogWarn("AI cache lookup failed", zap.Error(err))
	}

	resp, err := s.provider.Generate(ctx, &provider.Request{
		Instructions: extractionInstructions,
		Input:        prompt,
		MaxTokens:    s.config.MaxTokens,
		JSONOutput:   true,
	})
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	if err := s.cacheManager.Set(ctx, key, resp.Raw); err != nil {
		common.LogWarn("Failed to cache AI response", zap.Error(err))
	}
	return resp, nil
}

// CacheStats 快取統計
func (s *Service) CacheStats() cache.Stats {
	if s == nil {
		return cache.Stats{}
	}
	return s.cacheManager.GetStats()
}
