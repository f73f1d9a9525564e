package recipe

import (
	"fmt"
	"net/http"

	"recipe-clipper/internal/api/handlers"
	"recipe-clipper/internal/core/clipper"
	"recipe-clipper/internal/core/image"
	recipeCore "recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClipResponse 單一網址擷取響應
type ClipResponse struct {
	Success       bool               `json:"success"`
	Data          *recipeCore.Recipe `json:"data"`
	Source        string             `json:"source"`
	AlreadyExists bool               `json:"already_exists"`
	Saved         bool               `json:"saved"`
	Image         *image.Info        `json:"image,omitempty"`
}

// BatchResponse 批次擷取響應
type BatchResponse struct {
	Success    bool                `json:"success"`
	Total      int                 `json:"total"`
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	Skipped    int                 `json:"skipped"`
	Results    []clipper.BatchItem `json:"results"`
}

// HandleClip 擷取單一網址
func (h *Handler) HandleClip(c *gin.Context) {
	var req common.ClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	common.LogInfo("開始處理擷取請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("url", req.URL),
		zap.Bool("overwrite", req.Overwrite),
		zap.Bool("require_jsonld", req.RequireJSONLD),
	)

	out, err := h.clipper.Clip(c.Request.Context(), req.URL, clipper.Options{
		Overwrite:     req.Overwrite,
		Save:          common.SaveOrDefault(req.Save),
		RequireJSONLD: req.RequireJSONLD,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClipResponse{
		Success:       true,
		Data:          out.Recipe,
		Source:        out.Source,
		AlreadyExists: out.AlreadyExists,
		Saved:         out.Saved,
		Image:         out.Image,
	})
}

// HandleBatch 批次擷取，單一網址失敗不影響其他網址
func (h *Handler) HandleBatch(c *gin.Context) {
	var req common.BatchClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}
	if len(req.URLs) == 0 {
		handlers.RespondError(c, common.NewValidationError("urls must not be empty"))
		return
	}
	if h.maxBatch > 0 && len(req.URLs) > h.maxBatch {
		handlers.RespondError(c, common.ErrBatchTooLarge.Wrap(
			fmt.Errorf("got %d urls, max %d", len(req.URLs), h.maxBatch)))
		return
	}

	common.LogInfo("開始處理批次擷取請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("urls", len(req.URLs)),
	)

	items := h.clipper.ClipBatch(c.Request.Context(), req.URLs, clipper.Options{
		Overwrite:     req.Overwrite,
		Save:          common.SaveOrDefault(req.Save),
		RequireJSONLD: req.RequireJSONLD,
	})

	resp := BatchResponse{Success: true, Total: len(items), Results: items}
	for _, item := range items {
		switch {
		case item.Success:
			resp.Successful++
		case item.Skipped:
			resp.Skipped++
		default:
			resp.Failed++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleStats 擷取統計
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.clipper.Stats())
}

// HandleResetStats 清除擷取統計
func (h *Handler) HandleResetStats(c *gin.Context) {
	h.clipper.ResetStats()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
