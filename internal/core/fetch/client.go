package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher 下載頁面原始碼
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client 以 resty 下載頁面，429 與 5xx 會重試
type Client struct {
	client       *resty.Client
	maxBodyBytes int64
}

// NewClient 創建頁面下載客戶端
func NewClient(cfg *config.FetchConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			retry := err != nil ||
				r.StatusCode() == http.StatusTooManyRequests ||
				r.StatusCode() >= http.StatusInternalServerError
			// 不自動讀取回應，重試前需關閉這次的 body
			if retry {
				closeBody(r)
			}
			return retry
		})

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 8 * 1024 * 1024
	}

	return &Client{
		client:       client,
		maxBodyBytes: maxBody,
	}
}

// Fetch 下載頁面，非 2xx 或超出大小限制回傳 common.ErrFetchFailed
// 最多讀取 maxBodyBytes+1 位元組，過大的頁面不會整份載入記憶體
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		common.LogWarn("Page fetch failed", zap.String("url", url), zap.Error(err))
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("failed to fetch %s: %w", url, err))
	}
	defer closeBody(resp)

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		common.LogWarn("Page fetch returned error status",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode()),
		)
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("fetch %s: status code %d", url, resp.StatusCode()))
	}

	if resp.RawResponse.ContentLength > c.maxBodyBytes {
		return "", c.tooLarge(url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), c.maxBodyBytes+1))
	if err != nil {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("failed to read %s: %w", url, err))
	}
	if int64(len(data)) > c.maxBodyBytes {
		return "", c.tooLarge(url)
	}

	common.LogDebug("Page fetched",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return string(data), nil
}

func (c *Client) tooLarge(url string) error {
	common.LogWarn("Page exceeds size limit", zap.String("url", url), zap.Int64("max_bytes", c.maxBodyBytes))
	return common.ErrFetchFailed.Wrap(fmt.Errorf("page %s exceeds %d bytes", url, c.maxBodyBytes))
}

func closeBody(r *resty.Response) {
	if r != nil && r.RawResponse != nil && r.RawResponse.Body != nil {
		_ = r.RawResponse.Body.Close()
	}
}
