package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// RespondError 依錯誤類型輸出錯誤響應
// 非 release 模式才附上原始錯誤
func RespondError(c *gin.Context, err error) {
	status, code := common.StatusOf(err)

	resp := common.ErrorResponse{
		Code:      code,
		Message:   errorMessage(err),
		RequestID: requestid.Get(c),
	}
	if gin.Mode() != gin.ReleaseMode {
		resp.Details = err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// RespondBindError 請求格式錯誤
func RespondBindError(c *gin.Context, err error) {
	RespondError(c, common.NewValidationError("invalid request format: "+err.Error()))
}

func errorMessage(err error) string {
	if common.IsValidationError(err) {
		return err.Error()
	}
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}

// Rejection 將擷取失敗的原因轉為錯誤，附在 RECIPE_NOT_FOUND 的細節中
func Rejection(res recipe.Result) error {
	return fmt.Errorf("%s: %s", res.Reason, res.Detail)
}
