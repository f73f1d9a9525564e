package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code      string `json:"code"`                 // 錯誤代碼
	Message   string `json:"message"`              // 錯誤信息
	Details   string `json:"details,omitempty"`    // 詳細信息（僅在開發模式顯示）
	RequestID string `json:"request_id,omitempty"` // 請求 ID
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 Wrap 後的錯誤仍可用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以同樣的代碼與狀態包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼與錯誤代碼
func StatusOf(err error) (int, string) {
	if IsValidationError(err) {
		return http.StatusBadRequest, ErrCodeInvalidRequest
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status, ce.Code
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "不支持的請求方法", http.StatusMethodNotAllowed, nil)
	ErrRequestTimeout   = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrRecipeNotFound    = NewError("RECIPE_NOT_FOUND", "頁面中找不到可用的食譜", http.StatusNotFound, nil)
	ErrNoStructuredData  = NewError("NO_STRUCTURED_DATA", "頁面沒有 Recipe JSON-LD，已略過", http.StatusUnprocessableEntity, nil)
	ErrFetchFailed       = NewError("FETCH_FAILED", "頁面下載失敗", http.StatusBadGateway, nil)
	ErrStoreUnavailable  = NewError("STORE_UNAVAILABLE", "儲存服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrAIServiceError    = NewError("AI_SERVICE_ERROR", "AI 服務錯誤", http.StatusServiceUnavailable, nil)
	ErrAIDisabled        = NewError("AI_DISABLED", "AI 服務未啟用", http.StatusServiceUnavailable, nil)
	ErrInvalidImage      = NewError("INVALID_IMAGE", "無法辨識的圖片", http.StatusUnprocessableEntity, nil)
	ErrInvalidImageSize  = NewError("INVALID_IMAGE_SIZE", "圖片大小超出限制", http.StatusUnprocessableEntity, nil)
	ErrBatchTooLarge     = NewError("BATCH_TOO_LARGE", "批次網址數量超出限制", http.StatusBadRequest, nil)

	// 快取錯誤（內部使用）
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheFull     = errors.New("cache is full")
	ErrCacheDisabled = errors.New("cache is disabled")
)
