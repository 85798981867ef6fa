package llmconn

// ═══════════════════════════════════════════════════════════════════════════
// 角色定义
// ═══════════════════════════════════════════════════════════════════════════

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ═══════════════════════════════════════════════════════════════════════════
// 消息结构
// ═══════════════════════════════════════════════════════════════════════════

// Message 对话消息
//
// 构造后不应再修改，按值传入 Invoke/Stream。
// Content 与 ContentBlocks 二选一：简单文本用 Content，
// 多模态或工具交互用 ContentBlocks。
type Message struct {
	Role          Role           `json:"role"`
	Content       string         `json:"content,omitempty"`
	ContentBlocks []ContentBlock `json:"content_blocks,omitempty"`
}

// NewUserMessage 创建用户文本消息
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewSystemMessage 创建系统消息
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewAssistantMessage 创建助手文本消息
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// IsEmpty 检查消息是否无任何内容
func (m *Message) IsEmpty() bool {
	return m.Content == "" && len(m.ContentBlocks) == 0
}

// GetContent 获取消息文本内容
func (m *Message) GetContent() string {
	if m.Content != "" {
		return m.Content
	}
	for _, block := range m.ContentBlocks {
		if tb, ok := block.(*TextBlock); ok {
			return tb.Text
		}
	}
	return ""
}

// GetToolCalls 获取消息中的工具调用
func (m *Message) GetToolCalls() []*ToolCall {
	var calls []*ToolCall
	for _, block := range m.ContentBlocks {
		if tu, ok := block.(*ToolCall); ok {
			calls = append(calls, tu)
		}
	}
	return calls
}

// GetToolResults 获取消息中的工具结果
func (m *Message) GetToolResults() []*ToolResultBlock {
	var results []*ToolResultBlock
	for _, block := range m.ContentBlocks {
		if tr, ok := block.(*ToolResultBlock); ok {
			results = append(results, tr)
		}
	}
	return results
}

// HasToolCalls 检查消息是否包含工具调用
func (m *Message) HasToolCalls() bool {
	for _, block := range m.ContentBlocks {
		if _, ok := block.(*ToolCall); ok {
			return true
		}
	}
	return false
}

// HasToolResults 检查消息是否包含工具结果
func (m *Message) HasToolResults() bool {
	for _, block := range m.ContentBlocks {
		if _, ok := block.(*ToolResultBlock); ok {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// 内容块类型
// ═══════════════════════════════════════════════════════════════════════════

// ContentBlock 内容块接口
type ContentBlock interface {
	BlockType() string
}

// TextBlock 文本块
type TextBlock struct {
	Text string `json:"text"`
}

// BlockType 实现 ContentBlock 接口
func (b *TextBlock) BlockType() string { return "text" }

// ImageBlock 图片块
//
// URL 与 Data 二选一：
//   - URL: 公网图片地址（或 data URL）
//   - Data: base64 编码的图片数据，需同时指定 MediaType
//
// Detail 仅 OpenAI 协议使用（"low", "high", "auto"）。
type ImageBlock struct {
	URL       string `json:"url,omitempty"`
	Data      string `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"` // 如 "image/png"
	Detail    string `json:"detail,omitempty"`
}

// BlockType 实现 ContentBlock 接口
func (b *ImageBlock) BlockType() string { return "image" }

// DocumentBlock 文档块（PDF 等）
//
// 可引用已上传的文件（FileID），或直接内嵌 base64 数据。
type DocumentBlock struct {
	FileID    string `json:"file_id,omitempty"`
	Data      string `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"` // 如 "application/pdf"
}

// BlockType 实现 ContentBlock 接口
func (b *DocumentBlock) BlockType() string { return "document" }

// ToolResultBlock 工具结果块
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// BlockType 实现 ContentBlock 接口
func (b *ToolResultBlock) BlockType() string { return "tool_result" }

// ═══════════════════════════════════════════════════════════════════════════
// 工具调用
// ═══════════════════════════════════════════════════════════════════════════

// ToolCall 工具调用（实现 ContentBlock 接口）
//
// 模型发起的函数调用请求。本库不执行工具，
// 调用方执行后通过 ToolResultBlock 回传结果。
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// BlockType 实现 ContentBlock 接口
func (tc *ToolCall) BlockType() string { return "tool_use" }

// ThinkingBlock 思考/推理内容块
type ThinkingBlock struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature,omitempty"`
}

// BlockType 实现 ContentBlock 接口
func (b *ThinkingBlock) BlockType() string { return "thinking" }
