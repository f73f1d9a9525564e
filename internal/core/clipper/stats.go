package clipper

import (
	"math"
	"sync"
	"time"
)

// recentLimit 每個分類保留的最近紀錄數
const recentLimit = 100

// Attempt 單次擷取紀錄
type Attempt struct {
	URL           string    `json:"url"`
	Timestamp     time.Time `json:"timestamp"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	AlreadyExists bool      `json:"already_exists"`
	Skipped       bool      `json:"skipped"`
	Source        string    `json:"source,omitempty"`
}

// Stats 擷取統計
type Stats struct {
	TotalAttempted int       `json:"total_attempted"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	Skipped        int       `json:"skipped"`
	SuccessRate    float64   `json:"success_rate"` // 百分比，小數兩位
	RecentSuccess  []Attempt `json:"successful_urls"`
	RecentFailed   []Attempt `json:"failed_urls"`
	RecentSkipped  []Attempt `json:"skipped_urls"`
}

// tracker 記錄擷取結果，各分類只保留最近 recentLimit 筆
type tracker struct {
	mu         sync.Mutex
	total      int
	successful int
	failed     int
	skipped    int
	success    []Attempt
	failures   []Attempt
	skips      []Attempt
}

func (t *tracker) record(a Attempt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	switch {
	case a.Skipped:
		t.skipped++
		t.skips = appendRecent(t.skips, a)
	case a.Success:
		t.successful++
		t.success = appendRecent(t.success, a)
	default:
		t.failed++
		t.failures = appendRecent(t.failures, a)
	}
}

func appendRecent(list []Attempt, a Attempt) []Attempt {
	list = append(list, a)
	if len(list) > recentLimit {
		list = list[len(list)-recentLimit:]
	}
	return list
}

func (t *tracker) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rate float64
	if t.total > 0 {
		rate = math.Round(float64(t.successful)/float64(t.total)*10000) / 100
	}
	return Stats{
		TotalAttempted: t.total,
		Successful:     t.successful,
		Failed:         t.failed,
		Skipped:        t.skipped,
		SuccessRate:    rate,
		RecentSuccess:  append([]Attempt{}, t.success...),
		RecentFailed:   append([]Attempt{}, t.failures...),
		RecentSkipped:  append([]Attempt{}, t.skips...),
	}
}

func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total, t.successful, t.failed, t.skipped = 0, 0, 0, 0
	t.success, t.failures, t.skips = nil, nil, nil
}
