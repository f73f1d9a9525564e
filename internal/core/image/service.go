package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	"recipe-clipper/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Info 圖片基本資訊
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

// Service 圖片檢查服務
// 只讀取圖片標頭確認格式與尺寸，不做轉檔
type Service struct {
	maxSizeBytes int64
	client       *resty.Client
}

// NewService 創建新的圖片檢查服務
func NewService(maxSizeBytes int64, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		maxSizeBytes: maxSizeBytes,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "image/*"),
	}
}

// Probe 檢查圖片網址或 data URI
func (s *Service) Probe(ctx context.Context, src string) (*Info, error) {
	// 檢查是否為 URL
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, err := s.download(ctx, src)
		if err != nil {
			return nil, err
		}
		return s.decode(data)
	}

	// 處理 base64 格式
	if !strings.HasPrefix(src, "data:image/") {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported image source"))
	}

	parts := strings.SplitN(src, ",", 2)
	if len(parts) != 2 {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("invalid base64 data format"))
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	if int64(len(decoded)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}
	return s.decode(decoded)
}

// download 下載圖片，最多讀取 maxSizeBytes+1 位元組以判斷是否超出限制
func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}
	return data, nil
}

func (s *Service) decode(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	return &Info{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  int64(len(data)),
	}, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
