package localmock

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 内存批处理
// ═══════════════════════════════════════════════════════════════════════════

// batchEntry 内存中的批处理作业
type batchEntry struct {
	job      *llmconn.BatchJob
	requests []batchRequest
	polls    int // Status 查询次数，驱动状态推进
}

// batchRequest 输入文件中的单条请求
type batchRequest struct {
	CustomID string         `json:"custom_id"`
	Body     map[string]any `json:"body"`
}

// batchStore 内存批处理存储
type batchStore struct {
	mu      sync.Mutex
	entries map[string]*batchEntry
	order   []string // 创建顺序，用于 List
}

func newBatchStore() *batchStore {
	return &batchStore{entries: make(map[string]*batchEntry)}
}

// batchService 批处理服务
//
// 实现 [llmconn.BatchAPI] 接口。作业状态随 Status 查询推进：
// validating → in_progress → completed，便于测试完整轮询路径。
type batchService struct {
	client *Client
}

// Create 提交批处理作业
//
// file 为 JSONL 字节，与真实提供者的输入格式一致。
func (s *batchService) Create(ctx context.Context, file []byte, completionWindow string) (*llmconn.BatchJob, error) {
	if len(file) == 0 {
		return nil, llmconn.NewBatchError("batch input file is empty", nil)
	}
	if completionWindow == "" {
		completionWindow = "24h"
	}

	var requests []batchRequest
	scanner := bufio.NewScanner(bytes.NewReader(file))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var req batchRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, llmconn.NewBatchError("parse batch input line failed", err)
		}
		if req.CustomID == "" {
			return nil, llmconn.NewBatchError("batch input line missing custom_id", nil)
		}
		requests = append(requests, req)
	}
	if len(requests) == 0 {
		return nil, llmconn.NewBatchError("batch input file has no requests", nil)
	}

	job := &llmconn.BatchJob{
		ID:               "batch_" + uuid.NewString(),
		Status:           llmconn.BatchStatusValidating,
		Endpoint:         "/v1/chat/completions",
		CompletionWindow: completionWindow,
		RequestCounts: &llmconn.BatchRequestCounts{
			Total:      len(requests),
			Processing: len(requests),
		},
		Timestamps: llmconn.BatchTimestamps{
			CreatedAt: time.Now().Unix(),
		},
	}

	store := s.client.batches
	store.mu.Lock()
	store.entries[job.ID] = &batchEntry{job: job, requests: requests}
	store.order = append(store.order, job.ID)
	store.mu.Unlock()

	return cloneJob(job), nil
}

// Status 查询作业状态
//
// 每次查询推进一步：validating → in_progress → completed。
func (s *batchService) Status(ctx context.Context, id string) (*llmconn.BatchJob, error) {
	store := s.client.batches
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[id]
	if !ok {
		return nil, llmconn.NewNotFoundError(id, "")
	}

	if !entry.job.Status.IsTerminal() {
		entry.polls++
		switch {
		case entry.polls == 1:
			entry.job.Status = llmconn.BatchStatusInProgress
			entry.job.Timestamps.InProgressAt = time.Now().Unix()
		case entry.polls >= 2:
			entry.job.Status = llmconn.BatchStatusCompleted
			entry.job.Timestamps.CompletedAt = time.Now().Unix()
			entry.job.RequestCounts.Processing = 0
			entry.job.RequestCounts.Completed = entry.job.RequestCounts.Total
		}
	}

	return cloneJob(entry.job), nil
}

// Result 获取作业结果
//
// 仅在 completed 状态下有效，过早调用返回 BatchError。
// 每条记录的响应体使用连接器的当前响应文本合成。
func (s *batchService) Result(ctx context.Context, id string) (*llmconn.BatchResult, error) {
	store := s.client.batches
	store.mu.Lock()
	entry, ok := store.entries[id]
	if !ok {
		store.mu.Unlock()
		return nil, llmconn.NewNotFoundError(id, "")
	}
	status := entry.job.Status
	requests := entry.requests
	store.mu.Unlock()

	if status != llmconn.BatchStatusCompleted {
		return nil, llmconn.NewBatchError(
			fmt.Sprintf("batch %s is not completed (status: %s)", id, status), nil)
	}

	s.client.mu.RLock()
	response := s.client.response
	s.client.mu.RUnlock()

	records := make([]llmconn.BatchRecord, 0, len(requests))
	for _, req := range requests {
		records = append(records, llmconn.BatchRecord{
			CustomID:   req.CustomID,
			StatusCode: 200,
			Body: map[string]any{
				"choices": []any{
					map[string]any{
						"message": map[string]any{
							"role":    "assistant",
							"content": response,
						},
						"finish_reason": "stop",
					},
				},
			},
		})
	}

	return &llmconn.BatchResult{
		JobID:   id,
		Records: records,
	}, nil
}

// Cancel 取消作业
//
// 未进入终态的作业直接标记为 cancelled。
func (s *batchService) Cancel(ctx context.Context, id string) (*llmconn.BatchJob, error) {
	store := s.client.batches
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[id]
	if !ok {
		return nil, llmconn.NewNotFoundError(id, "")
	}

	if !entry.job.Status.IsTerminal() {
		entry.job.Status = llmconn.BatchStatusCancelled
		entry.job.Timestamps.CancelledAt = time.Now().Unix()
		counts := entry.job.RequestCounts
		counts.Cancelled = counts.Processing
		counts.Processing = 0
	}

	return cloneJob(entry.job), nil
}

// List 列出作业（按创建顺序）
func (s *batchService) List(ctx context.Context, limit int, after string) ([]*llmconn.BatchJob, error) {
	store := s.client.batches
	store.mu.Lock()
	defer store.mu.Unlock()

	start := 0
	if after != "" {
		for i, id := range store.order {
			if id == after {
				start = i + 1
				break
			}
		}
	}

	var jobs []*llmconn.BatchJob
	for _, id := range store.order[start:] {
		if limit > 0 && len(jobs) >= limit {
			break
		}
		jobs = append(jobs, cloneJob(store.entries[id].job))
	}
	return jobs, nil
}

// cloneJob 复制作业对象，避免调用方看到后续状态变化
func cloneJob(job *llmconn.BatchJob) *llmconn.BatchJob {
	clone := *job
	if job.RequestCounts != nil {
		counts := *job.RequestCounts
		clone.RequestCounts = &counts
	}
	return &clone
}

// 确保 batchService 实现了接口
var _ llmconn.BatchAPI = (*batchService)(nil)
