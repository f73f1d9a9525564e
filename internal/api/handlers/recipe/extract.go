package recipe

import (
	"net/http"
	"strings"

	"recipe-clipper/internal/api/handlers"
	recipeCore "recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DurationResponse 時間換算結果
type DurationResponse struct {
	Input string `json:"input"`
	ISO   string `json:"iso"`
	Text  string `json:"text"`
}

// HandleExtractMarkup 從頁面原始碼擷取食譜，不下載也不儲存
func (h *Handler) HandleExtractMarkup(c *gin.Context) {
	var req common.ExtractMarkupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	res := recipeCore.ExtractFromMarkupResult(req.HTML, req.URL)
	if res.Recipe == nil {
		common.LogInfo("Markup extraction rejected",
			zap.String("url", req.URL),
			zap.String("reason", res.Reason.String()),
		)
		handlers.RespondError(c, common.ErrRecipeNotFound.Wrap(handlers.Rejection(res)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res.Recipe,
	})
}

// HandleDuration 將時間字串轉為 ISO-8601 與顯示文字
func (h *Handler) HandleDuration(c *gin.Context) {
	value := strings.TrimSpace(c.Query("value"))
	if value == "" {
		handlers.RespondError(c, common.NewValidationError("value is required"))
		return
	}

	iso := recipeCore.ParseDuration(value)
	c.JSON(http.StatusOK, DurationResponse{
		Input: value,
		ISO:   iso,
		Text:  recipeCore.RenderDuration(iso),
	})
}
