package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// 批处理服务 (Message Batches API)
// ═══════════════════════════════════════════════════════════════════════════

// batchService 批处理服务
//
// 实现 [llmconn.BatchAPI] 接口。
//
// 与 OpenAI 的本质差异：Anthropic 的 Message Batches API 内联请求，
// 不经过文件上传。Create 在本地解析 JSONL 并转换为 requests 数组，
// Result 直接流式下载 JSONL 结果。completionWindow 参数被忽略
// （Anthropic 固定 24 小时处理窗口）。
type batchService struct {
	client *Client
}

// Create 提交批处理作业
//
// file 为 JSONL 字节，与 OpenAI 同构，每行一条请求记录：
//
//	{"custom_id": "req-1", "method": "POST", "url": "/v1/chat/completions", "body": {...}}
//
// body 中的 messages 必须已是 Anthropic 格式。
func (s *batchService) Create(ctx context.Context, file []byte, completionWindow string) (*llmconn.BatchJob, error) {
	requests, err := parseBatchInput(file)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.base.PostJSON(ctx, "/messages/batches", map[string]any{
		"requests": requests,
	}, nil)
	if err != nil {
		return nil, err
	}

	return parseBatchJob(resp), nil
}

// Status 查询作业状态
func (s *batchService) Status(ctx context.Context, id string) (*llmconn.BatchJob, error) {
	if id == "" {
		return nil, llmconn.NewBatchError("batch id is required", nil)
	}

	resp, err := s.client.base.GetJSON(ctx, "/messages/batches/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	return parseBatchJob(resp), nil
}

// Result 获取作业结果
//
// 仅在 completed 状态下有效。作业未结束时返回 BatchError，
// 由调用方轮询 Status 后重试。
func (s *batchService) Result(ctx context.Context, id string) (*llmconn.BatchResult, error) {
	job, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status != llmconn.BatchStatusCompleted {
		return nil, llmconn.NewBatchError(
			fmt.Sprintf("batch %s is not completed (status: %s)", id, job.Status), nil)
	}

	content, err := s.client.base.Download(ctx, "/messages/batches/"+id+"/results", nil)
	if err != nil {
		return nil, llmconn.NewBatchError("download batch results failed", err)
	}

	records, err := parseBatchRecords(content)
	if err != nil {
		return nil, err
	}

	return &llmconn.BatchResult{
		JobID:   job.ID,
		Records: records,
	}, nil
}

// Cancel 取消作业
//
// 取消是异步的：已进入处理的请求仍会完成，状态先进入 cancelling。
func (s *batchService) Cancel(ctx context.Context, id string) (*llmconn.BatchJob, error) {
	if id == "" {
		return nil, llmconn.NewBatchError("batch id is required", nil)
	}

	resp, err := s.client.base.PostJSON(ctx, "/messages/batches/"+id+"/cancel", nil, nil)
	if err != nil {
		return nil, err
	}

	return parseBatchJob(resp), nil
}

// List 列出作业
//
// after 为分页游标（上一页最后一个作业 ID，对应 after_id 参数）。
func (s *batchService) List(ctx context.Context, limit int, after string) ([]*llmconn.BatchJob, error) {
	query := map[string]string{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	if after != "" {
		query["after_id"] = after
	}

	resp, err := s.client.base.GetJSON(ctx, "/messages/batches", query, nil)
	if err != nil {
		return nil, err
	}

	data, _ := resp["data"].([]any)
	jobs := make([]*llmconn.BatchJob, 0, len(data))
	for _, item := range data {
		jobs = append(jobs, parseBatchJob(core.GetMap(item)))
	}
	return jobs, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 请求与响应转换
// ═══════════════════════════════════════════════════════════════════════════

// parseBatchInput 将 JSONL 输入转换为 Message Batches 的 requests 数组
func parseBatchInput(file []byte) ([]map[string]any, error) {
	if len(file) == 0 {
		return nil, llmconn.NewBatchError("batch input file is empty", nil)
	}

	var requests []map[string]any

	scanner := bufio.NewScanner(bytes.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw struct {
			CustomID string         `json:"custom_id"`
			Body     map[string]any `json:"body"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, llmconn.NewBatchError("parse batch input line failed", err)
		}
		if raw.CustomID == "" {
			return nil, llmconn.NewBatchError("batch input line missing custom_id", nil)
		}

		requests = append(requests, map[string]any{
			"custom_id": raw.CustomID,
			"params":    raw.Body,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, llmconn.NewBatchError("read batch input failed", err)
	}
	if len(requests) == 0 {
		return nil, llmconn.NewBatchError("batch input file has no requests", nil)
	}

	return requests, nil
}

// parseBatchJob 解析 Message Batches 作业对象
//
// 状态映射：
//   - in_progress → in_progress
//   - canceling   → cancelling
//   - ended       → completed（全部取消时为 cancelled）
func parseBatchJob(resp map[string]any) *llmconn.BatchJob {
	counts := parseRequestCounts(resp)

	job := &llmconn.BatchJob{
		ID:            core.GetString(resp["id"]),
		Status:        convertProcessingStatus(core.GetString(resp["processing_status"]), counts),
		RequestCounts: counts,
		Timestamps: llmconn.BatchTimestamps{
			CreatedAt:   core.ParseUnixOrRFC3339(resp["created_at"]),
			CompletedAt: core.ParseUnixOrRFC3339(resp["ended_at"]),
			CancelledAt: core.ParseUnixOrRFC3339(resp["cancel_initiated_at"]),
		},
	}

	return job
}

// parseRequestCounts 解析请求计数
//
// Anthropic 字段名：processing, succeeded, errored, canceled, expired。
func parseRequestCounts(resp map[string]any) *llmconn.BatchRequestCounts {
	raw, ok := resp["request_counts"].(map[string]any)
	if !ok {
		return nil
	}

	counts := &llmconn.BatchRequestCounts{
		Processing: core.GetInt(raw["processing"]),
		Completed:  core.GetInt(raw["succeeded"]),
		Failed:     core.GetInt(raw["errored"]),
		Cancelled:  core.GetInt(raw["canceled"]),
		Expired:    core.GetInt(raw["expired"]),
	}
	counts.Total = counts.Processing + counts.Completed + counts.Failed +
		counts.Cancelled + counts.Expired
	return counts
}

// convertProcessingStatus 转换 Anthropic processing_status 为统一状态
func convertProcessingStatus(status string, counts *llmconn.BatchRequestCounts) llmconn.BatchStatus {
	switch status {
	case "in_progress":
		return llmconn.BatchStatusInProgress
	case "canceling":
		return llmconn.BatchStatusCancelling
	case "ended":
		// 没有任何成功或失败的记录、只有取消时视为 cancelled
		if counts != nil && counts.Cancelled > 0 && counts.Completed == 0 && counts.Failed == 0 {
			return llmconn.BatchStatusCancelled
		}
		return llmconn.BatchStatusCompleted
	default:
		return llmconn.BatchStatus(status)
	}
}

// parseBatchRecords 解析 JSONL 结果
//
// 每行格式：
//
//	{"custom_id": "req-1", "result": {"type": "succeeded", "message": {...}}}
//	{"custom_id": "req-2", "result": {"type": "errored", "error": {"type": "...", "message": "..."}}}
func parseBatchRecords(content []byte) ([]llmconn.BatchRecord, error) {
	var records []llmconn.BatchRecord

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw struct {
			CustomID string `json:"custom_id"`
			Result   struct {
				Type    string         `json:"type"`
				Message map[string]any `json:"message"`
				Error   map[string]any `json:"error"`
			} `json:"result"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, llmconn.NewBatchError("parse batch result line failed", err)
		}

		record := llmconn.BatchRecord{CustomID: raw.CustomID}

		switch raw.Result.Type {
		case "succeeded":
			record.StatusCode = 200
			record.Body = raw.Result.Message
		case "errored":
			record.Error = &llmconn.BatchRecordError{
				Type:    core.GetString(raw.Result.Error["type"]),
				Message: core.GetString(raw.Result.Error["message"]),
			}
		default:
			// canceled / expired 也作为记录级错误暴露
			record.Error = &llmconn.BatchRecordError{
				Type:    raw.Result.Type,
				Message: "request " + raw.Result.Type,
			}
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, llmconn.NewBatchError("read batch results failed", err)
	}

	return records, nil
}

// 确保 batchService 实现了接口
var _ llmconn.BatchAPI = (*batchService)(nil)
