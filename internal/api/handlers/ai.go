package handlers

import (
	"net/http"

	"recipe-clipper/internal/core/ai/service"
	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIHandler AI 處理器
type AIHandler struct {
	aiService *service.Service
}

// NewAIHandler 創建 AI 處理器，aiService 可為 nil
func NewAIHandler(aiService *service.Service) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// ExtractEnvelope 從已取得的模型回應信封組裝食譜，不呼叫模型
func (h *AIHandler) ExtractEnvelope(c *gin.Context) {
	var req common.ExtractAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	res := recipe.ExtractFromAIEnvelopeResult(req.Envelope, req.URL)
	if res.Recipe == nil {
		common.LogInfo("AI envelope rejected",
			zap.String("url", req.URL),
			zap.String("reason", res.Reason.String()),
			zap.String("detail", res.Detail),
		)
		RespondError(c, common.ErrRecipeNotFound.Wrap(Rejection(res)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res.Recipe,
	})
}

// ExtractPage 將提供的頁面原始碼直接交給模型擷取
func (h *AIHandler) ExtractPage(c *gin.Context) {
	if !h.aiService.Enabled() {
		RespondError(c, common.ErrAIDisabled)
		return
	}

	var req common.ExtractMarkupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	res, err := h.aiService.ExtractFromPage(c.Request.Context(), req.HTML, req.URL)
	if err != nil {
		RespondError(c, err)
		return
	}
	if res.Recipe == nil {
		RespondError(c, common.ErrRecipeNotFound.Wrap(Rejection(res)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res.Recipe,
	})
}

// CacheStats 模型回應快取統計
func (h *AIHandler) CacheStats(c *gin.Context) {
	if h.aiService == nil {
		RespondError(c, common.ErrAIDisabled)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled": h.aiService.Enabled(),
		"cache":   h.aiService.CacheStats(),
	})
}
