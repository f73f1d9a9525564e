package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"go.uber.org/zap"
)

// Task 佇列中執行的工作
type Task func(ctx context.Context) (interface{}, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Task    Task
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	Active         int64 `json:"active"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 固定數量 worker 的工作佇列
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *Request
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	processed int64
	active    int64
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(cfg *config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxBatch
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	common.LogInfo("Queue manager started",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for req := range m.queue {
		m.run(req)
	}
}

func (m *Manager) run(req *Request) {
	atomic.AddInt64(&m.active, 1)
	defer atomic.AddInt64(&m.active, -1)
	defer atomic.AddInt64(&m.processed, 1)

	// 排隊期間已取消的請求不再執行
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("Queue task panicked", zap.Any("panic", r))
			req.Result <- Result{Error: fmt.Errorf("task panicked: %v", r)}
		}
	}()

	value, err := req.Task(req.Context)
	req.Result <- Result{Value: value, Error: err}
}

// Enqueue 將工作加入隊列，佇列滿時等待直到有空位或 ctx 取消
func (m *Manager) Enqueue(ctx context.Context, task Task) (<-chan Result, error) {
	queueReq := &Request{
		Context: ctx,
		Task:    task,
		Result:  make(chan Result, 1),
	}

	// 持有讀鎖直到送出，Close 不會在送出途中關閉 channel
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("queue manager is closed")
	}

	select {
	case m.queue <- queueReq:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return queueReq.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		Active:         atomic.LoadInt64(&m.active),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止接受新工作，等待已排隊的工作完成
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
