package core

import (
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 协议适配器接口
// ═══════════════════════════════════════════════════════════════════════════

// ProtocolAdapter 协议适配器接口
//
// 每个 LLM Provider 实现此接口来定义协议特有的转换逻辑。
//
// 设计原则：
//   - 显式差异：协议差异通过接口方法明确体现
//   - 单一职责：只负责协议格式转换，不涉及 HTTP 通信与错误处理
//
// 硬约束示例：
//   - OpenAI: 工具参数必须序列化为 JSON 字符串；ToolResult 独立消息 (role=tool)
//   - Anthropic: 工具参数保持为对象；ToolResult 内联在 content 数组
type ProtocolAdapter interface {
	// ConvertToAPI 将统一的 Message 转换为 API 请求格式
	//
	// 负责角色映射、内容格式差异（string vs content array）、
	// 多模态块与工具调用/结果的格式差异。
	ConvertToAPI(messages []llmconn.Message) []map[string]any

	// ConvertFromAPI 将 API 响应转换为统一的 Message
	//
	// 返回统一格式的 Message 和标准化的完成原因。
	ConvertFromAPI(apiResp map[string]any) (msg llmconn.Message, finishReason string)

	// ConvertUsage 解析 Token 使用量
	//
	// 映射字段名差异 (prompt_tokens vs input_tokens) 并计算总量。
	// 无 usage 字段时返回 nil。
	ConvertUsage(apiResp map[string]any) *llmconn.TokenUsage

	// GetSystemMessageHandling 返回系统消息处理策略
	GetSystemMessageHandling() SystemMessageStrategy
}

// ═══════════════════════════════════════════════════════════════════════════
// 系统消息策略
// ═══════════════════════════════════════════════════════════════════════════

// SystemMessageStrategy 系统消息处理策略
type SystemMessageStrategy string

const (
	// SystemInline 系统消息内联在消息数组中
	//
	// 使用场景：OpenAI 兼容 API
	// 格式：[{"role": "system", "content": "..."}, ...]
	SystemInline SystemMessageStrategy = "inline"

	// SystemSeparate 系统消息作为独立参数
	//
	// 使用场景：Anthropic API
	// 格式：{"system": "...", "messages": [...]}
	SystemSeparate SystemMessageStrategy = "separate"
)
