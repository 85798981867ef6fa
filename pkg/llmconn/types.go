package llmconn

import "context"

// ═══════════════════════════════════════════════════════════════════════════
// Connector 接口
// ═══════════════════════════════════════════════════════════════════════════

// Connector LLM 提供者连接器接口
//
// 每个提供者实现此接口，暴露统一的操作集。
// 子接口对象是无状态的轻量值，可安全并发使用；
// 并发调用由调用方 fan-out goroutine 实现，库内无调度。
type Connector interface {
	// Chat 获取对话补全接口
	Chat() ChatAPI

	// Batch 获取批处理接口
	Batch() BatchAPI

	// File 获取文件接口
	File() FileAPI

	// Close 关闭连接
	Close() error
}

// ChatAPI 对话补全接口
type ChatAPI interface {
	// Invoke 同步补全，阻塞直到完整响应可用，返回唯一的 Response
	Invoke(ctx context.Context, messages []Message, opts *Options) (*Response, error)

	// Stream 流式补全，返回单次、前向、不可重放的事件流。
	// 提前放弃迭代时调用 Stream.Close 释放底层连接。
	Stream(ctx context.Context, messages []Message, opts *Options) (*Stream, error)
}

// BatchAPI 批处理接口
//
// file 参数为 JSONL 字节，每行一个请求记录。
type BatchAPI interface {
	// Create 提交批处理作业
	Create(ctx context.Context, file []byte, completionWindow string) (*BatchJob, error)

	// Status 查询作业状态
	Status(ctx context.Context, id string) (*BatchJob, error)

	// Result 获取作业结果。仅在 completed 状态下有效，
	// 过早调用返回 BatchError（状态错误）。
	Result(ctx context.Context, id string) (*BatchResult, error)

	// Cancel 取消作业
	Cancel(ctx context.Context, id string) (*BatchJob, error)

	// List 列出作业，after 为分页游标（作业 ID）
	List(ctx context.Context, limit int, after string) ([]*BatchJob, error)
}

// FileAPI 文件接口
type FileAPI interface {
	// Upload 上传文件，返回文件 ID
	Upload(ctx context.Context, content []byte, filename string, purpose Purpose) (string, error)

	// Retrieve 获取文件元数据
	Retrieve(ctx context.Context, id string) (*FileHandle, error)

	// Download 下载文件内容
	Download(ctx context.Context, id string) ([]byte, error)

	// Delete 删除文件
	Delete(ctx context.Context, id string) error

	// List 列出文件
	List(ctx context.Context) ([]*FileHandle, error)
}

// ═══════════════════════════════════════════════════════════════════════════
// 请求选项与响应
// ═══════════════════════════════════════════════════════════════════════════

// Options 单次请求选项
type Options struct {
	// Model 按调用覆盖模型（为空时使用连接器配置的模型）
	Model string `json:"model,omitempty"`

	// 基础配置
	System      string  `json:"system,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// 采样参数
	TopP             float64  `json:"top_p,omitempty"`
	FrequencyPenalty float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty,omitempty"`
	StopSequences    []string `json:"stop_sequences,omitempty"`

	// Reasoning 模型参数 (o1/o3, DeepSeek R1 等)
	Reasoning       string `json:"reasoning,omitempty"`        // 推理力度: "minimal", "low", "medium", "high"
	ReasoningBudget int    `json:"reasoning_budget,omitempty"` // 推理 token 预算 (Anthropic 最小 1024)

	// 结构化输出
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// 工具
	Tools []ToolSchema `json:"tools,omitempty"`

	// 扩展
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ResponseFormat 响应格式配置 (Structured Output)
type ResponseFormat struct {
	Type   string         `json:"type"`             // "json_schema", "json_object", "text"
	Name   string         `json:"name,omitempty"`   // Schema 名称
	Schema map[string]any `json:"schema,omitempty"` // JSON Schema 定义
}

// ToolSchema 工具 Schema
//
// 使用 [NewToolSchema] 可从 Go 结构体自动派生 InputSchema。
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Response 补全响应
//
// 统一的响应形状：内容、完成原因、用量、工具调用都在这里。
// 不变式：Usage.TotalTokens == InputTokens + OutputTokens。
type Response struct {
	Message      Message        `json:"message"`
	FinishReason string         `json:"finish_reason"`
	Model        string         `json:"model,omitempty"` // 实际使用的模型
	Usage        *TokenUsage    `json:"usage,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Content 获取响应文本内容
func (r *Response) Content() string {
	return r.Message.GetContent()
}

// ToolCalls 获取响应中的工具调用（由调用方执行）
func (r *Response) ToolCalls() []*ToolCall {
	return r.Message.GetToolCalls()
}

// TokenUsage Token 使用量
type TokenUsage struct {
	InputTokens     int64 `json:"input_tokens"`
	OutputTokens    int64 `json:"output_tokens"`
	TotalTokens     int64 `json:"total_tokens"`
	ReasoningTokens int64 `json:"reasoning_tokens,omitempty"` // 推理 tokens (DeepSeek R1, o1/o3 等)
	CachedTokens    int64 `json:"cached_tokens,omitempty"`    // Prompt Caching tokens
}
