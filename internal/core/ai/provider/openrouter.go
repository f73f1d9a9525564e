package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-clipper/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter（OpenAI Responses 相容）客戶端
type Client struct {
	config Config
	client *resty.Client
}

// responseBody 只解析用量與模型名稱，其餘保留原始結構
type responseBody struct {
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient 創建模型客戶端
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-clipper.app").
		SetHeader("X-Title", "Recipe Clipper").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError)
		})

	return &Client{config: cfg, client: client}
}

// Generate 呼叫 POST /responses
func (c *Client) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	// 構建請求
	body := map[string]interface{}{
		"model": c.config.Model,
		"input": req.Input,
	}
	if req.Instructions != "" {
		body["instructions"] = req.Instructions
	}
	if maxTokens > 0 {
		body["max_output_tokens"] = maxTokens
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if req.JSONOutput {
		body["text"] = map[string]interface{}{
			"format": map[string]string{"type": "json_object"},
		}
	}

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/responses")
	if err != nil {
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to model provider: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("model provider returned status %d: %s", resp.StatusCode(), common.Truncate(resp.String(), 300))
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, err
	}

	result, err := DecodeResponse(resp.Body())
	if err != nil {
		common.LogAICall(c.config.Model, time.Since(start), err)
		return nil, err
	}
	if result.Model == "" {
		result.Model = c.config.Model
	}

	common.LogAICall(result.Model, time.Since(start), nil)
	common.LogDebug("Model usage",
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
	)
	return result, nil
}

// DecodeResponse 解碼回應 JSON，保留原始字串供快取使用
func DecodeResponse(raw []byte) (*Response, error) {
	var meta responseBody
	if err := common.ParseJSONBytes(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if meta.Error != nil && meta.Error.Message != "" {
		return nil, fmt.Errorf("model provider error: %s", meta.Error.Message)
	}

	body, err := common.ParseJSONValue(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return &Response{
		Raw:   string(raw),
		Body:  body,
		Usage: meta.Usage,
		Model: meta.Model,
	}, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.config.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
