package recipe

import (
	"strconv"

	"recipe-clipper/internal/core/clipper"
	"recipe-clipper/internal/pkg/common"
)

const (
	// 列表預設與最大筆數
	defaultListLimit = 20
	maxListLimit     = 100
)

// Handler 擷取與食譜處理程序
type Handler struct {
	clipper  *clipper.Service
	maxBatch int
}

// NewHandler 創建處理程序，maxBatch 為批次擷取的網址上限
func NewHandler(clipperSvc *clipper.Service, maxBatch int) *Handler {
	return &Handler{
		clipper:  clipperSvc,
		maxBatch: maxBatch,
	}
}

// parseLimit 解析 limit 查詢參數，空字串時使用預設值
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, common.NewValidationError("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
