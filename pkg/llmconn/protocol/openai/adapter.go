package openai

import (
	"encoding/json"
	"fmt"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// OpenAI 协议适配器
// ═══════════════════════════════════════════════════════════════════════════

// Adapter OpenAI 协议适配器
//
// 实现 core.ProtocolAdapter 接口，处理 OpenAI 兼容 API 的协议格式。
// Groq 走同一协议。
//
// 关键协议差异：
//  1. 工具参数：必须序列化为 JSON 字符串
//  2. 工具结果：必须展开为独立的 tool 角色消息
//  3. 系统消息：内联在消息数组中
//  4. 多模态：content 数组内 image_url 块
//  5. Token 字段名：prompt_tokens, completion_tokens
type Adapter struct{}

// NewAdapter 创建 OpenAI 协议适配器
func NewAdapter() *Adapter {
	return &Adapter{}
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertToAPI - 消息转换为 OpenAI 格式
// ═══════════════════════════════════════════════════════════════════════════

// ConvertToAPI 实现 OpenAI 特有的消息转换逻辑
//
// OpenAI 协议要求：
//   - ToolResult 展开为独立的 tool 角色消息
//   - 工具调用参数序列化为 JSON 字符串
//   - 含图片的消息使用 content 数组（text + image_url 块）
//   - 包含工具调用的消息必须有 content 字段（即使为空）
func (a *Adapter) ConvertToAPI(messages []llmconn.Message) []map[string]any {
	result := make([]map[string]any, 0, len(messages))

	for _, msg := range messages {
		// 系统消息由 Transformer 统一处理
		if msg.Role == llmconn.RoleSystem {
			continue
		}

		// ToolResult 展开为独立消息
		if msg.HasToolResults() {
			for _, tr := range msg.GetToolResults() {
				result = append(result, map[string]any{
					"role":         "tool",
					"tool_call_id": tr.ToolUseID,
					"content":      tr.Content,
				})
			}
			continue
		}

		m := map[string]any{"role": string(msg.Role)}

		// 多模态消息使用 content 数组
		if parts := buildContentParts(msg); parts != nil {
			m["content"] = parts
		} else if content := extractTextContent(msg); content != "" {
			m["content"] = content
		}

		// 工具调用（仅 assistant 角色）
		if msg.Role == llmconn.RoleAssistant {
			if toolCalls := extractToolCalls(msg.ContentBlocks); len(toolCalls) > 0 {
				m["tool_calls"] = toolCalls
				// OpenAI 要求有 content 字段（即使为空）
				if m["content"] == nil {
					m["content"] = ""
				}
			}
		}

		result = append(result, m)
	}

	return result
}

// buildContentParts 构建多模态 content 数组
//
// 消息仅含文本时返回 nil（走简单 string content）。
func buildContentParts(msg llmconn.Message) []map[string]any {
	hasMedia := false
	for _, block := range msg.ContentBlocks {
		switch block.(type) {
		case *llmconn.ImageBlock, *llmconn.DocumentBlock:
			hasMedia = true
		}
	}
	if !hasMedia {
		return nil
	}

	var parts []map[string]any
	for _, block := range msg.ContentBlocks {
		switch b := block.(type) {
		case *llmconn.TextBlock:
			parts = append(parts, map[string]any{
				"type": "text",
				"text": b.Text,
			})

		case *llmconn.ImageBlock:
			url := b.URL
			if url == "" && b.Data != "" {
				url = fmt.Sprintf("data:%s;base64,%s", b.MediaType, b.Data)
			}
			imageURL := map[string]any{"url": url}
			if b.Detail != "" {
				imageURL["detail"] = b.Detail
			}
			parts = append(parts, map[string]any{
				"type":      "image_url",
				"image_url": imageURL,
			})

		case *llmconn.DocumentBlock:
			file := map[string]any{}
			if b.FileID != "" {
				file["file_id"] = b.FileID
			} else if b.Data != "" {
				file["file_data"] = fmt.Sprintf("data:%s;base64,%s", b.MediaType, b.Data)
			}
			parts = append(parts, map[string]any{
				"type": "file",
				"file": file,
			})
		}
	}
	return parts
}

// extractToolCalls 提取工具调用（OpenAI 格式）
//
// 结构：{"id": "...", "type": "function", "function": {"name": "...", "arguments": "..."}}
func extractToolCalls(blocks []llmconn.ContentBlock) []map[string]any {
	var result []map[string]any

	for _, block := range blocks {
		if tu, ok := block.(*llmconn.ToolCall); ok {
			// 参数序列化为 JSON 字符串
			args, _ := json.Marshal(tu.Input)
			result = append(result, map[string]any{
				"id":   tu.ID,
				"type": "function",
				"function": map[string]any{
					"name":      tu.Name,
					"arguments": string(args),
				},
			})
		}
	}

	return result
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertFromAPI - 解析 OpenAI 响应
// ═══════════════════════════════════════════════════════════════════════════

// ConvertFromAPI 解析 OpenAI 响应为统一 Message
//
// OpenAI 响应格式：
//
//	{
//	  "choices": [{
//	    "message": {
//	      "content": "...",
//	      "tool_calls": [{"function": {"arguments": "{...}"}}]
//	    },
//	    "finish_reason": "stop"
//	  }]
//	}
func (a *Adapter) ConvertFromAPI(resp map[string]any) (llmconn.Message, string) {
	msg := llmconn.Message{Role: llmconn.RoleAssistant}

	choices, _ := resp["choices"].([]any)
	if len(choices) == 0 {
		return msg, ""
	}

	choice := core.GetMap(choices[0])
	messageData := core.GetMap(choice["message"])
	finishReason, _ := choice["finish_reason"].(string)

	if content, ok := messageData["content"].(string); ok {
		msg.Content = content
	}

	if toolCalls, ok := messageData["tool_calls"].([]any); ok {
		var blocks []llmconn.ContentBlock

		if msg.Content != "" {
			blocks = append(blocks, &llmconn.TextBlock{Text: msg.Content})
		}

		for _, tc := range toolCalls {
			tcMap := core.GetMap(tc)
			fn := core.GetMap(tcMap["function"])

			// 参数从 JSON 字符串反序列化为对象
			var args map[string]any
			if argsStr, ok := fn["arguments"].(string); ok {
				_ = json.Unmarshal([]byte(argsStr), &args)
			}

			blocks = append(blocks, &llmconn.ToolCall{
				ID:    core.GetString(tcMap["id"]),
				Name:  core.GetString(fn["name"]),
				Input: args,
			})
		}

		msg.ContentBlocks = blocks
		msg.Content = "" // 清空，使用 ContentBlocks
	}

	return msg, finishReason
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertUsage - 解析 Token 使用量
// ═══════════════════════════════════════════════════════════════════════════

// ConvertUsage 解析 OpenAI 的 Token 使用量
//
// OpenAI 字段名：
//   - prompt_tokens, completion_tokens, total_tokens
//   - completion_tokens_details.reasoning_tokens
//   - prompt_tokens_details.cached_tokens
func (a *Adapter) ConvertUsage(resp map[string]any) *llmconn.TokenUsage {
	usage, ok := resp["usage"].(map[string]any)
	if !ok {
		return nil
	}

	result := &llmconn.TokenUsage{
		InputTokens:  core.GetInt64(usage["prompt_tokens"]),
		OutputTokens: core.GetInt64(usage["completion_tokens"]),
		TotalTokens:  core.GetInt64(usage["total_tokens"]),
	}

	if result.TotalTokens == 0 {
		result.TotalTokens = result.InputTokens + result.OutputTokens
	}

	// 推理 tokens (o1/o3, DeepSeek R1)
	if details, ok := usage["completion_tokens_details"].(map[string]any); ok {
		result.ReasoningTokens = core.GetInt64(details["reasoning_tokens"])
	}

	// Prompt Caching tokens
	if details, ok := usage["prompt_tokens_details"].(map[string]any); ok {
		result.CachedTokens = core.GetInt64(details["cached_tokens"])
	}

	return result
}

// ═══════════════════════════════════════════════════════════════════════════
// GetSystemMessageHandling - 系统消息策略
// ═══════════════════════════════════════════════════════════════════════════

// GetSystemMessageHandling 返回 OpenAI 的系统消息处理策略
//
// OpenAI 使用 SystemInline：系统消息作为第一条普通消息。
func (a *Adapter) GetSystemMessageHandling() core.SystemMessageStrategy {
	return core.SystemInline
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// extractTextContent 提取文本内容（优先 ContentBlocks，次优 Content）
func extractTextContent(msg llmconn.Message) string {
	for _, b := range msg.ContentBlocks {
		if tb, ok := b.(*llmconn.TextBlock); ok {
			return tb.Text
		}
	}
	return msg.Content
}

// 确保 Adapter 实现了 ProtocolAdapter 接口
var _ core.ProtocolAdapter = (*Adapter)(nil)
