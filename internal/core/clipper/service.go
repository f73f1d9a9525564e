package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"recipe-clipper/internal/core/fetch"
	"recipe-clipper/internal/core/image"
	"recipe-clipper/internal/core/queue"
	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/infrastructure/store"
	"recipe-clipper/internal/pkg/common"

	"go.uber.org/zap"
)

// 食譜來源
const (
	SourceStore  = "store"
	SourceJSONLD = "jsonld"
	SourceAI     = "ai"
)

// AIExtractor 以模型擷取食譜
type AIExtractor interface {
	Enabled() bool
	ExtractFromPage(ctx context.Context, markup, url string) (recipe.Result, error)
}

// ImageProber 檢查食譜圖片
type ImageProber interface {
	Probe(ctx context.Context, src string) (*image.Info, error)
}

// Options 擷取選項
type Options struct {
	// Overwrite 已儲存時仍重新擷取
	Overwrite bool
	// Save 擷取成功後寫入儲存
	Save bool
	// RequireJSONLD 頁面沒有 Recipe JSON-LD 時直接略過，不使用模型
	RequireJSONLD bool
}

// Outcome 單一網址的擷取結果
type Outcome struct {
	Recipe        *recipe.Recipe `json:"recipe"`
	Source        string         `json:"source"`
	AlreadyExists bool           `json:"already_exists"`
	Saved         bool           `json:"saved"`
	Image         *image.Info    `json:"image,omitempty"`
}

// BatchItem 批次結果中的一筆
type BatchItem struct {
	URL     string         `json:"url"`
	Success bool           `json:"success"`
	Skipped bool           `json:"skipped,omitempty"`
	Error   string         `json:"error,omitempty"`
	Data    *recipe.Recipe `json:"data"`
	Source  string         `json:"source,omitempty"`
}

// Service 擷取服務：下載頁面 -> JSON-LD -> 模型備援 -> 儲存
type Service struct {
	fetcher fetch.Fetcher
	ai      AIExtractor
	images  ImageProber
	store   store.Store
	queue   *queue.Manager
	stats   tracker
}

// NewService 創建擷取服務；queue、ai 與 images 可為 nil
func NewService(fetcher fetch.Fetcher, st store.Store, q *queue.Manager, ai AIExtractor, images ImageProber) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("clipper: fetcher is required")
	}
	if st == nil {
		return nil, errors.New("clipper: store is required")
	}
	return &Service{
		fetcher: fetcher,
		ai:      ai,
		images:  images,
		store:   st,
		queue:   q,
	}, nil
}

// ValidateURL 只接受 http/https 絕對網址
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", common.NewValidationError(fmt.Sprintf("invalid url %q: must be an absolute http(s) url", raw))
	}
	return raw, nil
}

// Clip 擷取單一網址
func (s *Service) Clip(ctx context.Context, rawURL string, opts Options) (*Outcome, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		s.record(rawURL, nil, err)
		return nil, err
	}

	out, err := s.clip(ctx, pageURL, opts)
	s.record(pageURL, out, err)
	return out, err
}

func (s *Service) clip(ctx context.Context, pageURL string, opts Options) (*Outcome, error) {
	id := recipe.GenerateID(pageURL)

	if !opts.Overwrite {
		existing, err := s.store.Get(ctx, id)
		switch {
		case err == nil:
			common.LogInfo("Recipe already stored", zap.String("url", pageURL), zap.String("id", id))
			return &Outcome{Recipe: existing, Source: SourceStore, AlreadyExists: true}, nil
		case !errors.Is(err, store.ErrNotFound):
			common.LogWarn("Store lookup failed, extracting anyway", zap.String("id", id), zap.Error(err))
		}
	}

	markup, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	out, err := s.extract(ctx, markup, pageURL, opts)
	if err != nil {
		return nil, err
	}

	if s.images != nil {
		info, err := s.images.Probe(ctx, out.Recipe.Image)
		if err != nil {
			common.LogWarn("Recipe image probe failed",
				zap.String("url", pageURL),
				zap.String("image", out.Recipe.Image),
				zap.Error(err),
			)
		} else {
			out.Image = info
		}
	}

	if opts.Save {
		if err := s.store.Save(ctx, out.Recipe); err != nil {
			return nil, common.ErrStoreUnavailable.Wrap(err)
		}
		out.Saved = true
	}

	common.LogInfo("Recipe clipped",
		zap.String("url", pageURL),
		zap.String("id", out.Recipe.ID),
		zap.String("source", out.Source),
		zap.Bool("saved", out.Saved),
	)
	return out, nil
}

// extract JSON-LD 優先，找不到時依選項改用模型
func (s *Service) extract(ctx context.Context, markup, pageURL string, opts Options) (*Outcome, error) {
	res := recipe.ExtractFromMarkupResult(markup, pageURL)
	if res.Recipe != nil {
		return &Outcome{Recipe: res.Recipe, Source: SourceJSONLD}, nil
	}
	common.LogInfo("Structured data extraction rejected",
		zap.String("url", pageURL),
		zap.String("reason", res.Reason.String()),
		zap.String("detail", res.Detail),
	)

	if opts.RequireJSONLD {
		if res.Reason == recipe.ReasonNoBlocks || res.Reason == recipe.ReasonNoEntity {
			return nil, common.ErrNoStructuredData
		}
		return nil, common.ErrRecipeNotFound.Wrap(fmt.Errorf("%s: %s", res.Reason, res.Detail))
	}

	if s.ai == nil || !s.ai.Enabled() {
		return nil, common.ErrRecipeNotFound.Wrap(fmt.Errorf("%s: %s", res.Reason, res.Detail))
	}

	aiRes, err := s.ai.ExtractFromPage(ctx, markup, pageURL)
	if err != nil {
		return nil, err
	}
	if aiRes.Recipe == nil {
		return nil, common.ErrRecipeNotFound.Wrap(fmt.Errorf("ai %s: %s", aiRes.Reason, aiRes.Detail))
	}
	return &Outcome{Recipe: aiRes.Recipe, Source: SourceAI}, nil
}

func (s *Service) record(pageURL string, out *Outcome, err error) {
	a := Attempt{URL: pageURL, Timestamp: time.Now(), Success: err == nil}
	if out != nil {
		a.Source = out.Source
		a.AlreadyExists = out.AlreadyExists
	}
	if err != nil {
		a.Error = err.Error()
		a.Skipped = errors.Is(err, common.ErrNoStructuredData)
	}
	s.stats.record(a)
}

// ClipBatch 以工作佇列並行擷取，結果順序與輸入相同
// 單一網址失敗不影響其他網址
func (s *Service) ClipBatch(ctx context.Context, urls []string, opts Options) []BatchItem {
	items := make([]BatchItem, len(urls))
	pending := make([]<-chan queue.Result, len(urls))

	for i, u := range urls {
		items[i].URL = u
		if s.queue == nil {
			out, err := s.Clip(ctx, u, opts)
			items[i] = batchItem(u, out, err)
			continue
		}

		pageURL := u
		ch, err := s.queue.Enqueue(ctx, func(ctx context.Context) (interface{}, error) {
			return s.Clip(ctx, pageURL, opts)
		})
		if err != nil {
			items[i] = batchItem(u, nil, err)
			continue
		}
		pending[i] = ch
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		res := <-ch
		out, _ := res.Value.(*Outcome)
		items[i] = batchItem(urls[i], out, res.Error)
	}
	return items
}

func batchItem(u string, out *Outcome, err error) BatchItem {
	item := BatchItem{URL: u}
	if err != nil {
		item.Error = err.Error()
		item.Skipped = errors.Is(err, common.ErrNoStructuredData)
		return item
	}
	if out != nil {
		item.Success = true
		item.Data = out.Recipe
		item.Source = out.Source
	}
	return item
}

// Stats 擷取統計
func (s *Service) Stats() Stats {
	return s.stats.snapshot()
}

// ResetStats 清除擷取紀錄
func (s *Service) ResetStats() {
	s.stats.reset()
}

// HasRecipeMarkup 頁面是否含有 Recipe JSON-LD（不組裝）
func (s *Service) HasRecipeMarkup(markup string) bool {
	return recipe.HasRecipe(recipe.LocateStructuredData(markup))
}

// Get 取得已儲存的食譜
func (s *Service) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return r, nil
}

// Delete 刪除已儲存的食譜
func (s *Service) Delete(ctx context.Context, id string) error {
	return storeError(s.store.Delete(ctx, id))
}

// List 列出已儲存的食譜
func (s *Service) List(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	recipes, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return recipes, nil
}

// Ping 檢查儲存是否可用
func (s *Service) Ping(ctx context.Context) error {
	return storeError(s.store.Ping(ctx))
}

func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return common.ErrNotFound.Wrap(err)
	default:
		return common.ErrStoreUnavailable.Wrap(err)
	}
}
