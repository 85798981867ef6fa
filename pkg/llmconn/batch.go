package llmconn

// ═══════════════════════════════════════════════════════════════════════════
// 批处理状态
// ═══════════════════════════════════════════════════════════════════════════

// BatchStatus 批处理作业状态
//
// 状态单调推进：validating → in_progress → finalizing →
// {completed, failed, expired}；取消路径 cancelling → cancelled。
// 仅 completed 状态下可获取结果。
type BatchStatus string

const (
	BatchStatusValidating BatchStatus = "validating"
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusFinalizing BatchStatus = "finalizing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusExpired    BatchStatus = "expired"
	BatchStatusCancelling BatchStatus = "cancelling"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// String 返回字符串表示
func (s BatchStatus) String() string {
	return string(s)
}

// IsTerminal 检查是否为终态（不再推进）
func (s BatchStatus) IsTerminal() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusExpired, BatchStatusCancelled:
		return true
	default:
		return false
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 批处理作业
// ═══════════════════════════════════════════════════════════════════════════

// BatchTimestamps 作业各状态的时间戳（Unix 秒，0 表示未发生）
type BatchTimestamps struct {
	CreatedAt    int64 `json:"created_at,omitempty"`
	InProgressAt int64 `json:"in_progress_at,omitempty"`
	CompletedAt  int64 `json:"completed_at,omitempty"`
	FailedAt     int64 `json:"failed_at,omitempty"`
	ExpiredAt    int64 `json:"expired_at,omitempty"`
	CancelledAt  int64 `json:"cancelled_at,omitempty"`
}

// BatchRequestCounts 作业内请求计数
type BatchRequestCounts struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Processing int `json:"processing,omitempty"`
	Cancelled  int `json:"cancelled,omitempty"`
	Expired    int `json:"expired,omitempty"`
}

// BatchJob 批处理作业句柄
//
// OpenAI/Groq 通过文件引用输入输出（InputFileID/OutputFileID）；
// Anthropic 的 Message Batches 不使用文件 ID，相应字段为空。
type BatchJob struct {
	ID               string              `json:"id"`
	Status           BatchStatus         `json:"status"`
	Endpoint         string              `json:"endpoint,omitempty"`
	CompletionWindow string              `json:"completion_window,omitempty"`
	InputFileID      string              `json:"input_file_id,omitempty"`
	OutputFileID     string              `json:"output_file_id,omitempty"`
	ErrorFileID      string              `json:"error_file_id,omitempty"`
	RequestCounts    *BatchRequestCounts `json:"request_counts,omitempty"`
	Timestamps       BatchTimestamps     `json:"timestamps,omitzero"`
}

// ═══════════════════════════════════════════════════════════════════════════
// 批处理结果
// ═══════════════════════════════════════════════════════════════════════════

// BatchRecordError 单条记录的错误信息
type BatchRecordError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchRecord 单条请求的输出记录
type BatchRecord struct {
	CustomID   string            `json:"custom_id"`
	StatusCode int               `json:"status_code,omitempty"`
	Body       map[string]any    `json:"body,omitempty"`
	Error      *BatchRecordError `json:"error,omitempty"`
}

// Succeeded 检查记录是否成功
func (r *BatchRecord) Succeeded() bool {
	return r.Error == nil
}

// BatchResult 作业结果集
type BatchResult struct {
	JobID        string        `json:"job_id"`
	OutputFileID string        `json:"output_file_id,omitempty"`
	Records      []BatchRecord `json:"records"`
}
