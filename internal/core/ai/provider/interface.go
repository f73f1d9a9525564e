package provider

import (
	"context"
	"time"
)

// Request 表示發送到模型的擷取請求
type Request struct {
	Instructions string  `json:"instructions,omitempty"`
	Input        string  `json:"input"`
	MaxTokens    int     `json:"max_output_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	// JSONOutput 要求模型只輸出 JSON 物件
	JSONOutput bool `json:"-"`
}

// Usage token 用量
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response 表示從模型收到的回應
type Response struct {
	// Raw 原始回應 JSON，用於快取
	Raw string
	// Body 解碼後的回應，結構為 {output: [{content: [{text}]}]}
	Body  interface{}
	Usage Usage
	Model string
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseURL    string
	MaxTokens  int
}
