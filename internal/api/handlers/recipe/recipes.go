package recipe

import (
	"net/http"

	"recipe-clipper/internal/api/handlers"
	recipeCore "recipe-clipper/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// HandleList 列出已儲存的食譜（新到舊）
func (h *Handler) HandleList(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	recipes, err := h.clipper.List(c.Request.Context(), limit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if recipes == nil {
		recipes = []*recipeCore.Recipe{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(recipes),
		"data":    recipes,
	})
}

// HandleGet 取得單一食譜
func (h *Handler) HandleGet(c *gin.Context) {
	r, err := h.clipper.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    r,
	})
}

// HandleDelete 刪除食譜
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.clipper.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
