package anthropic

import (
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// Anthropic 协议适配器
// ═══════════════════════════════════════════════════════════════════════════

// Adapter Anthropic 协议适配器
//
// 实现 core.ProtocolAdapter 接口，处理 Anthropic API 特有的协议格式。
//
// 关键协议差异：
//  1. 内容数组：使用 content 数组承载所有内容块
//  2. 工具参数：直接传递对象（无需序列化为 JSON 字符串）
//  3. 工具结果：内联在 content 数组中
//  4. 系统消息：独立的 system 参数（SystemSeparate）
//  5. 多模态：image / document 块使用 source 结构
//  6. Token 字段名：input_tokens, output_tokens（无 total_tokens）
type Adapter struct{}

// NewAdapter 创建 Anthropic 协议适配器
func NewAdapter() *Adapter {
	return &Adapter{}
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertToAPI - 消息转换为 Anthropic 格式
// ═══════════════════════════════════════════════════════════════════════════

// ConvertToAPI 实现 Anthropic 特有的消息转换逻辑
//
// Anthropic 协议要求：
//   - 使用 content 数组承载所有内容块
//   - 工具参数直接传递对象（无需序列化为 JSON 字符串）
//   - ToolResult 内联在 content 数组中（不展开为独立消息）
//   - content 数组必须非空
func (a *Adapter) ConvertToAPI(messages []llmconn.Message) []map[string]any {
	result := make([]map[string]any, 0, len(messages))

	for _, msg := range messages {
		// 系统消息由 Transformer 统一处理
		if msg.Role == llmconn.RoleSystem {
			continue
		}

		// Messages API 只接受 user/assistant 角色，
		// tool 角色消息（工具结果）归入 user
		role := string(msg.Role)
		if msg.Role == llmconn.RoleTool {
			role = string(llmconn.RoleUser)
		}

		m := map[string]any{"role": role}

		// Anthropic 使用 content 数组
		var content []map[string]any

		if len(msg.ContentBlocks) > 0 {
			for _, block := range msg.ContentBlocks {
				switch b := block.(type) {
				case *llmconn.TextBlock:
					content = append(content, map[string]any{
						"type": "text",
						"text": b.Text,
					})

				case *llmconn.ImageBlock:
					content = append(content, map[string]any{
						"type":   "image",
						"source": imageSource(b),
					})

				case *llmconn.DocumentBlock:
					content = append(content, map[string]any{
						"type":   "document",
						"source": documentSource(b),
					})

				case *llmconn.ToolCall:
					// ⚠️ 关键差异：参数直接是对象，不是 JSON 字符串
					content = append(content, map[string]any{
						"type":  "tool_use",
						"id":    b.ID,
						"name":  b.Name,
						"input": b.Input, // ← 直接对象
					})

				case *llmconn.ToolResultBlock:
					// ⚠️ 关键差异：ToolResult 内联在 content 数组中
					tr := map[string]any{
						"type":        "tool_result",
						"tool_use_id": b.ToolUseID,
						"content":     b.Content,
					}
					if b.IsError {
						tr["is_error"] = true
					}
					content = append(content, tr)
				}
			}
		} else if msg.Content != "" {
			// 降级到 Content 字段
			content = append(content, map[string]any{
				"type": "text",
				"text": msg.Content,
			})
		}

		// Anthropic 要求 content 必须非空
		if len(content) > 0 {
			m["content"] = content
			result = append(result, m)
		}
	}

	return result
}

// imageSource 构建图片的 source 结构（base64 / url）
func imageSource(b *llmconn.ImageBlock) map[string]any {
	if b.URL != "" {
		return map[string]any{
			"type": "url",
			"url":  b.URL,
		}
	}
	return map[string]any{
		"type":       "base64",
		"media_type": b.MediaType,
		"data":       b.Data,
	}
}

// documentSource 构建文档的 source 结构（file_id / base64）
func documentSource(b *llmconn.DocumentBlock) map[string]any {
	if b.FileID != "" {
		return map[string]any{
			"type":    "file",
			"file_id": b.FileID,
		}
	}
	return map[string]any{
		"type":       "base64",
		"media_type": b.MediaType,
		"data":       b.Data,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertFromAPI - 解析 Anthropic 响应
// ═══════════════════════════════════════════════════════════════════════════

// ConvertFromAPI 解析 Anthropic 响应为统一 Message
//
// Anthropic 响应格式：
//
//	{
//	  "content": [
//	    {"type": "text", "text": "..."},
//	    {"type": "tool_use", "id": "...", "name": "...", "input": {...}}
//	  ],
//	  "stop_reason": "end_turn"
//	}
func (a *Adapter) ConvertFromAPI(resp map[string]any) (llmconn.Message, string) {
	msg := llmconn.Message{Role: llmconn.RoleAssistant}

	contentArray, _ := resp["content"].([]any)
	var blocks []llmconn.ContentBlock
	var textContent string

	for _, item := range contentArray {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}

		blockType, _ := block["type"].(string)

		switch blockType {
		case "text":
			text, _ := block["text"].(string)
			textContent = text
			blocks = append(blocks, &llmconn.TextBlock{Text: text})

		case "thinking":
			thinking, _ := block["thinking"].(string)
			signature, _ := block["signature"].(string)
			blocks = append(blocks, &llmconn.ThinkingBlock{
				Thinking:  thinking,
				Signature: signature,
			})

		case "tool_use":
			id, _ := block["id"].(string)
			name, _ := block["name"].(string)
			// ⚠️ 关键差异：参数直接是对象（无需反序列化）
			input, _ := block["input"].(map[string]any)
			blocks = append(blocks, &llmconn.ToolCall{
				ID:    id,
				Name:  name,
				Input: input, // ← 直接对象
			})
		}
	}

	// 设置 ContentBlocks 或 Content
	if len(blocks) > 0 {
		msg.ContentBlocks = blocks
		// 如果只有单个文本块，同时设置 Content
		if len(blocks) == 1 && textContent != "" {
			msg.Content = textContent
		} else {
			msg.Content = "" // 清空，使用 ContentBlocks
		}
	}

	stopReason, _ := resp["stop_reason"].(string)
	return msg, convertStopReason(stopReason)
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertUsage - 解析 Token 使用量
// ═══════════════════════════════════════════════════════════════════════════

// ConvertUsage 解析 Anthropic 的 Token 使用量
//
// Anthropic 字段名：
//   - input_tokens, output_tokens（无 total_tokens）
//   - cache_read_input_tokens（Prompt Caching）
func (a *Adapter) ConvertUsage(resp map[string]any) *llmconn.TokenUsage {
	usage, ok := resp["usage"].(map[string]any)
	if !ok {
		return nil
	}

	result := &llmconn.TokenUsage{
		InputTokens:  core.GetInt64(usage["input_tokens"]),
		OutputTokens: core.GetInt64(usage["output_tokens"]),
	}

	// 手动计算 total_tokens（Anthropic 不返回此字段）
	result.TotalTokens = result.InputTokens + result.OutputTokens

	// Anthropic Prompt Caching
	if cacheRead := core.GetInt64(usage["cache_read_input_tokens"]); cacheRead > 0 {
		result.CachedTokens = cacheRead
	}

	return result
}

// ═══════════════════════════════════════════════════════════════════════════
// GetSystemMessageHandling - 系统消息策略
// ═══════════════════════════════════════════════════════════════════════════

// GetSystemMessageHandling 返回 Anthropic 的系统消息处理策略
//
// Anthropic 使用 SystemSeparate：系统消息作为独立的 "system" 参数传递。
func (a *Adapter) GetSystemMessageHandling() core.SystemMessageStrategy {
	return core.SystemSeparate
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// convertStopReason 转换 Anthropic stop_reason 为标准 finish_reason
//
// Anthropic 映射：
//   - end_turn       -> stop
//   - max_tokens     -> length
//   - tool_use       -> tool_calls
//   - stop_sequence  -> stop
//   - refusal        -> content_filter
func convertStopReason(stopReason string) string {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	case "tool_use":
		return "tool_calls"
	case "refusal":
		return "content_filter"
	default:
		return stopReason
	}
}

// 确保 Adapter 实现了 ProtocolAdapter 接口
var _ core.ProtocolAdapter = (*Adapter)(nil)
