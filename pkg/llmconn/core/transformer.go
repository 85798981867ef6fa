package core

import (
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 消息转换器
// ═══════════════════════════════════════════════════════════════════════════

// Transformer 消息转换器
//
// 封装通用的消息转换流程，协议差异委托给 [ProtocolAdapter]。
//
// 使用示例：
//
//	transformer := core.NewTransformer(openai.NewAdapter())
//	apiMsgs := transformer.BuildAPIMessages(messages, systemPrompt)
//	msg, reason, usage := transformer.ParseAPIResponse(apiResp)
type Transformer struct {
	adapter ProtocolAdapter
}

// NewTransformer 创建消息转换器
func NewTransformer(adapter ProtocolAdapter) *Transformer {
	return &Transformer{adapter: adapter}
}

// Adapter 返回底层协议适配器
func (t *Transformer) Adapter() ProtocolAdapter {
	return t.adapter
}

// BuildAPIMessages 构建 API 请求消息数组
//
// 系统消息统一在此处理：
//   - SystemInline: 系统提示插入消息数组开头（OpenAI）
//   - SystemSeparate: 不处理，由调用方作为独立的 "system" 参数传递（Anthropic）
//
// 消息数组中的系统消息会被过滤，调用方应通过 systemPrompt 传入。
func (t *Transformer) BuildAPIMessages(
	messages []llmconn.Message,
	systemPrompt string,
) []map[string]any {
	// 预处理：过滤系统消息（系统消息由独立参数处理）
	var userMessages []llmconn.Message
	for _, msg := range messages {
		if msg.Role != llmconn.RoleSystem {
			userMessages = append(userMessages, msg)
		}
	}

	apiMsgs := t.adapter.ConvertToAPI(userMessages)

	if systemPrompt != "" {
		switch t.adapter.GetSystemMessageHandling() {
		case SystemInline:
			systemMsg := map[string]any{
				"role":    "system",
				"content": systemPrompt,
			}
			apiMsgs = append([]map[string]any{systemMsg}, apiMsgs...)

		case SystemSeparate:
			// 调用方将 systemPrompt 放在请求的 "system" 字段
		}
	}

	return apiMsgs
}

// ParseAPIResponse 解析 API 响应
//
// 返回统一格式的 Message、标准化的完成原因和 Token 使用量（可能为 nil）。
func (t *Transformer) ParseAPIResponse(apiResp map[string]any) (
	msg llmconn.Message,
	finishReason string,
	usage *llmconn.TokenUsage,
) {
	msg, finishReason = t.adapter.ConvertFromAPI(apiResp)
	usage = t.adapter.ConvertUsage(apiResp)
	return
}

// ExtractSystemPrompt 从选项与消息中提取系统提示
//
// 优先使用 opts.System，否则取消息列表中第一条系统消息。
func ExtractSystemPrompt(messages []llmconn.Message, opts *llmconn.Options) string {
	if opts != nil && opts.System != "" {
		return opts.System
	}
	for _, msg := range messages {
		if msg.Role == llmconn.RoleSystem {
			return msg.GetContent()
		}
	}
	return ""
}
