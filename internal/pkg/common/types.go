package common

// ClipRequest 擷取單一食譜的請求
type ClipRequest struct {
	URL           string `json:"url" binding:"required"`
	Overwrite     bool   `json:"overwrite"`                // 已存在時是否重新擷取
	Save          *bool  `json:"save,omitempty"`           // 是否寫入儲存，預設 true
	RequireJSONLD bool   `json:"require_jsonld,omitempty"` // 沒有 JSON-LD 時直接略過，不使用 AI
}

// BatchClipRequest 批次擷取請求
type BatchClipRequest struct {
	URLs          []string `json:"urls" binding:"required"`
	Overwrite     bool     `json:"overwrite"`
	Save          *bool    `json:"save,omitempty"`
	RequireJSONLD bool     `json:"require_jsonld,omitempty"`
}

// ExtractMarkupRequest 直接從頁面原始碼擷取食譜
type ExtractMarkupRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url" binding:"required"`
}

// ExtractAIRequest 直接從模型回應信封擷取食譜
type ExtractAIRequest struct {
	Envelope interface{} `json:"envelope"` // null 或形狀不符時回傳 404
	URL      string      `json:"url" binding:"required"`
}

// SaveOrDefault 回傳 save 欄位，未提供時為 true
func SaveOrDefault(save *bool) bool {
	if save == nil {
		return true
	}
	return *save
}
