package openai

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
// 批处理服务
// ═══════════════════════════════════════════════════════════════════════════

// batchService 批处理服务
//
// 实现 [llmconn.BatchAPI] 接口。
//
// OpenAI 批处理流程：
//  1. 上传 JSONL 输入文件（purpose=batch）
//  2. POST /batches 引用 input_file_id 创建作业
//  3. 轮询状态直到 completed
//  4. 下载 output_file_id 获取 JSONL 结果
type batchService struct {
	client *Client
}

// defaultCompletionWindow 默认完成窗口
const defaultCompletionWindow = "24h"

// Create 提交批处理作业
//
// file 为 JSONL 字节，每行一条请求记录：
//
//	{"custom_id": "req-1", "method": "POST", "url": "/v1/chat/completions", "body": {...}}
func (s *batchService) Create(ctx context.Context, file []byte, completionWindow string) (*llmconn.BatchJob, error) {
	if len(file) == 0 {
		return nil, llmconn.NewBatchError("batch input file is empty", nil)
	}
	if completionWindow == "" {
		completionWindow = defaultCompletionWindow
	}

	// 先上传输入文件
	inputFileID, err := s.client.File().Upload(ctx, file, "batch_input.jsonl", llmconn.PurposeBatch)
	if err != nil {
		return nil, llmconn.NewBatchError("upload batch input file failed", err)
	}

	resp, err := s.client.base.PostJSON(ctx, "/batches", map[string]any{
		"input_file_id":     inputFileID,
		"endpoint":          "/v1/chat/completions",
		"completion_window": completionWindow,
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

	resp, err := s.client.base.GetJSON(ctx, "/batches/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	return parseBatchJob(resp), nil
}

// Result 获取作业结果
//
// 仅在 completed 状态下有效。作业未完成时返回 BatchError，
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
	if job.OutputFileID == "" {
		return nil, llmconn.NewBatchError("batch completed but has no output file", nil)
	}

	content, err := s.client.File().Download(ctx, job.OutputFileID)
	if err != nil {
		return nil, llmconn.NewBatchError("download batch output failed", err)
	}

	records, err := parseBatchRecords(content)
	if err != nil {
		return nil, err
	}

	return &llmconn.BatchResult{
		JobID:        job.ID,
		OutputFileID: job.OutputFileID,
		Records:      records,
	}, nil
}

// Cancel 取消作业
func (s *batchService) Cancel(ctx context.Context, id string) (*llmconn.BatchJob, error) {
	if id == "" {
		return nil, llmconn.NewBatchError("batch id is required", nil)
	}

	resp, err := s.client.base.PostJSON(ctx, "/batches/"+id+"/cancel", nil, nil)
	if err != nil {
		return nil, err
	}

	return parseBatchJob(resp), nil
}

// List 列出作业
//
// after 为分页游标（上一页最后一个作业 ID）。
func (s *batchService) List(ctx context.Context, limit int, after string) ([]*llmconn.BatchJob, error) {
	query := map[string]string{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	if after != "" {
		query["after"] = after
	}

	resp, err := s.client.base.GetJSON(ctx, "/batches", query, nil)
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
// 响应解析
// ═══════════════════════════════════════════════════════════════════════════

// parseBatchJob 解析 OpenAI 批处理作业对象
//
// OpenAI 的状态值与统一状态一一对应，无需映射。
func parseBatchJob(resp map[string]any) *llmconn.BatchJob {
	job := &llmconn.BatchJob{
		ID:               core.GetString(resp["id"]),
		Status:           llmconn.BatchStatus(core.GetString(resp["status"])),
		Endpoint:         core.GetString(resp["endpoint"]),
		CompletionWindow: core.GetString(resp["completion_window"]),
		InputFileID:      core.GetString(resp["input_file_id"]),
		OutputFileID:     core.GetString(resp["output_file_id"]),
		ErrorFileID:      core.GetString(resp["error_file_id"]),
		Timestamps: llmconn.BatchTimestamps{
			CreatedAt:    core.GetInt64(resp["created_at"]),
			InProgressAt: core.GetInt64(resp["in_progress_at"]),
			CompletedAt:  core.GetInt64(resp["completed_at"]),
			FailedAt:     core.GetInt64(resp["failed_at"]),
			ExpiredAt:    core.GetInt64(resp["expired_at"]),
			CancelledAt:  core.GetInt64(resp["cancelled_at"]),
		},
	}

	if counts, ok := resp["request_counts"].(map[string]any); ok {
		job.RequestCounts = &llmconn.BatchRequestCounts{
			Total:     core.GetInt(counts["total"]),
			Completed: core.GetInt(counts["completed"]),
			Failed:    core.GetInt(counts["failed"]),
		}
	}

	return job
}

// parseBatchRecords 解析 JSONL 输出文件
//
// 每行格式：
//
//	{"custom_id": "req-1", "response": {"status_code": 200, "body": {...}}, "error": null}
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
			Response *struct {
				StatusCode int            `json:"status_code"`
				Body       map[string]any `json:"body"`
			} `json:"response"`
			Error *llmconn.BatchRecordError `json:"error"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, llmconn.NewBatchError("parse batch output line failed", err)
		}

		record := llmconn.BatchRecord{
			CustomID: raw.CustomID,
			Error:    raw.Error,
		}
		if raw.Response != nil {
			record.StatusCode = raw.Response.StatusCode
			record.Body = raw.Response.Body
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, llmconn.NewBatchError("read batch output failed", err)
	}

	return records, nil
}

// 确保 batchService 实现了接口
var _ llmconn.BatchAPI = (*batchService)(nil)
