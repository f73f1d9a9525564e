package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"recipe-clipper/internal/core/clipper"
	"recipe-clipper/internal/core/queue"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/infrastructure/store"
	"recipe-clipper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const (
	pieURL   = "https://example.com/pie"
	blogURL  = "https://example.com/blog"
	pieThumb = "https://example.com/pie.jpg"
)

var testPages = map[string]string{
	pieURL: `<html><head><script type="application/ld+json">
		{"@context":"https://schema.org","@type":"Recipe","name":"Apple Pie","image":"` + pieThumb + `",
		 "recipeIngredient":["6 apples","1 crust"],"recipeInstructions":["Slice","Bake"],"totalTime":"PT1H30M"}
		</script></head></html>`,
	blogURL: `<html><body><p>Just a story about soup.</p></body></html>`,
}

type pageFetcher struct{}

func (pageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, ok := testPages[url]
	if !ok {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("status code %d", http.StatusNotFound))
	}
	return page, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Debug: true, Version: "test"},
		Server: config.ServerConfig{
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Queue: config.QueueConfig{Workers: 2, MaxBatch: 3},
	}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	q := queue.NewManager(&cfg.Queue)
	t.Cleanup(q.Close)

	svc, err := clipper.NewService(pageFetcher{}, store.NewMemoryStore(0), q, nil, nil)
	require.NoError(t, err)
	router, err := SetupRouter(cfg, Dependencies{Clipper: svc, Queue: q})
	require.NoError(t, err)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			data, _ := json.Marshal(b)
			buf.Write(data)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSetupRouter_RequiresClipper(t *testing.T) {
	_, err := SetupRouter(testConfig(), Dependencies{})
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotNil(t, body["queue"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doRequest(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])

	w = doRequest(router, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClipAndRecipeLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/clip", gin.H{"url": pieURL})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, clipper.SourceJSONLD, body["source"])
	assert.Equal(t, true, body["saved"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Apple Pie", data["name"])
	assert.Equal(t, "PT1H30M", data["totalTime"])
	id := data["id"].(string)
	assert.Len(t, id, 64)

	// 第二次擷取直接回傳已儲存的紀錄
	w = doRequest(router, http.MethodPost, "/api/v1/clip", gin.H{"url": pieURL})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, clipper.SourceStore, body["source"])
	assert.Equal(t, true, body["already_exists"])

	w = doRequest(router, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = doRequest(router, http.MethodGet, "/api/v1/recipes/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Apple Pie", decode(t, w)["data"].(map[string]interface{})["name"])

	w = doRequest(router, http.MethodDelete, "/api/v1/recipes/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeNotFound, decode(t, w)["code"])
}

func TestClip_NoSave(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/clip", gin.H{"url": pieURL, "save": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["saved"])

	w = doRequest(router, http.MethodGet, "/api/v1/recipes", nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestClip_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed body", `{"url":`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"missing url", gin.H{}, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"non http url", gin.H{"url": "ftp://example.com/pie"}, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"no structured data", gin.H{"url": blogURL, "require_jsonld": true}, http.StatusUnprocessableEntity, "NO_STRUCTURED_DATA"},
		{"no recipe without ai", gin.H{"url": blogURL}, http.StatusNotFound, "RECIPE_NOT_FOUND"},
		{"fetch failure", gin.H{"url": "https://example.com/missing"}, http.StatusBadGateway, "FETCH_FAILED"},
	}

	router := setupTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/clip", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestClipBatch(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/clip/batch", gin.H{
		"urls":           []string{blogURL, pieURL},
		"require_jsonld": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["successful"])
	assert.Equal(t, float64(1), body["skipped"])

	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, blogURL, results[0].(map[string]interface{})["url"])
	assert.Equal(t, pieURL, results[1].(map[string]interface{})["url"])
	assert.Equal(t, true, results[1].(map[string]interface{})["success"])

	w = doRequest(router, http.MethodGet, "/api/v1/clip/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(2), stats["total_attempted"])
	assert.Equal(t, float64(50), stats["success_rate"])

	w = doRequest(router, http.MethodDelete, "/api/v1/clip/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, "/api/v1/clip/stats", nil)
	assert.Equal(t, float64(0), decode(t, w)["total_attempted"])
}

func TestClipBatch_Validation(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/clip/batch", gin.H{"urls": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode(t, w)["code"])

	w = doRequest(router, http.MethodPost, "/api/v1/clip/batch", gin.H{
		"urls": []string{pieURL, blogURL, pieURL + "?a", pieURL + "?b"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BATCH_TOO_LARGE", decode(t, w)["code"])
}

func TestExtractMarkup(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/extract/markup", gin.H{
		"html": testPages[pieURL],
		"url":  pieURL,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Apple Pie", decode(t, w)["data"].(map[string]interface{})["name"])

	w = doRequest(router, http.MethodPost, "/api/v1/extract/markup", gin.H{"html": "", "url": pieURL})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", decode(t, w)["code"])

	// 只做擷取，不寫入儲存
	w = doRequest(router, http.MethodGet, "/api/v1/recipes", nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestExtractAIEnvelope(t *testing.T) {
	router := setupTestRouter(t)

	payload := `{"title":"Pancakes","image_url":"https://x/p.jpg","ingredients":["flour","egg"],"instructions":"Whisk\nFry"}`
	envelope := gin.H{
		"source": gin.H{
			"output": []interface{}{
				gin.H{"content": []interface{}{gin.H{"type": "output_text", "text": payload}}},
			},
		},
	}

	w := doRequest(router, http.MethodPost, "/api/v1/extract/ai", gin.H{
		"envelope": envelope,
		"url":      "https://example.com/pancakes",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Pancakes", data["name"])
	assert.Equal(t, []interface{}{"Whisk", "Fry"}, data["instructions"])

	w = doRequest(router, http.MethodPost, "/api/v1/extract/ai", gin.H{
		"envelope": nil,
		"url":      "https://example.com/pancakes",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractPage_AIDisabled(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/extract/page", gin.H{"html": "<p>soup</p>", "url": blogURL})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI_DISABLED", decode(t, w)["code"])

	w = doRequest(router, http.MethodGet, "/api/v1/ai/cache/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDuration(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		value string
		iso   string
		text  string
	}{
		{"PT1H30M", "PT1H30M", "1 h 30 m"},
		{"1%20hour%2030%20minutes", "PT1H30M", "1 h 30 m"},
		{"P0DT0H45M", "PT45M", "45 m"},
	}
	for _, tt := range tests {
		w := doRequest(router, http.MethodGet, "/api/v1/duration?value="+tt.value, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, tt.iso, body["iso"], tt.value)
		assert.Equal(t, tt.text, body["text"], tt.value)
	}

	w := doRequest(router, http.MethodGet, "/api/v1/duration", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipes_InvalidLimit(t *testing.T) {
	router := setupTestRouter(t)

	for _, limit := range []string{"abc", "0", "-5"} {
		w := doRequest(router, http.MethodGet, "/api/v1/recipes?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
	w := doRequest(router, http.MethodGet, "/api/v1/recipes?limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodySizeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 64
	svc, err := clipper.NewService(pageFetcher{}, store.NewMemoryStore(0), nil, nil, nil)
	require.NoError(t, err)
	router, err := SetupRouter(cfg, Dependencies{Clipper: svc})
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/v1/extract/markup", gin.H{
		"html": string(bytes.Repeat([]byte("a"), 200)),
		"url":  pieURL,
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/clip", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
