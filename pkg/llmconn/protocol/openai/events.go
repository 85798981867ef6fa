package openai

import (
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// OpenAI SSE 事件处理器
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler OpenAI SSE 事件处理器
//
// 实现 core.EventHandler 接口，处理 OpenAI 流式响应的特有格式。
//
// OpenAI 流式格式：
//   - 无显式事件类型（只有 data: 行）
//   - 每条 data: 是一个 chunk，choices[0].delta 携带增量内容
//   - data: [DONE] 表示流结束
type EventHandler struct{}

// NewEventHandler 创建 OpenAI 事件处理器
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// ═══════════════════════════════════════════════════════════════════════════
// HandleEvent - 处理流式事件
// ═══════════════════════════════════════════════════════════════════════════

// HandleEvent 处理 OpenAI 流式 chunk
//
// OpenAI 特点：
//   - eventType 恒为空（不使用 event: 行）
//   - delta.content 为文本增量
//   - delta.reasoning_content 为推理增量（DeepSeek R1 风格）
//   - delta.tool_calls 为工具调用增量（参数为 JSON 字符串片段）
//   - finish_reason 非空时发送完成事件
func (h *EventHandler) HandleEvent(eventType string, data map[string]any) ([]*llmconn.Event, bool) {
	var result []*llmconn.Event

	choices, _ := data["choices"].([]any)
	if len(choices) == 0 {
		return result, false
	}

	choice := core.GetMap(choices[0])
	delta := core.GetMap(choice["delta"])

	// 文本增量
	if content, ok := delta["content"].(string); ok && content != "" {
		result = append(result, &llmconn.Event{
			Type:      llmconn.EventTypeText,
			TextDelta: content,
		})
	}

	// 推理增量（DeepSeek R1 等通过 reasoning_content 输出思维链）
	if reasoning, ok := delta["reasoning_content"].(string); ok && reasoning != "" {
		result = append(result, &llmconn.Event{
			Type: llmconn.EventTypeReasoning,
			Reasoning: &llmconn.ReasoningDelta{
				ThoughtDelta: reasoning,
			},
		})
	}

	// 工具调用增量
	if toolCalls, ok := delta["tool_calls"].([]any); ok {
		for _, tc := range toolCalls {
			tcMap := core.GetMap(tc)
			fn := core.GetMap(tcMap["function"])

			result = append(result, &llmconn.Event{
				Type: llmconn.EventTypeToolCall,
				ToolCall: &llmconn.ToolCallDelta{
					Index:          core.GetInt(tcMap["index"]),
					ID:             core.GetString(tcMap["id"]),
					Name:           core.GetString(fn["name"]),
					ArgumentsDelta: core.GetString(fn["arguments"]),
				},
			})
		}
	}

	// 完成事件（携带 finish_reason）
	if finishReason, ok := choice["finish_reason"].(string); ok && finishReason != "" {
		result = append(result, &llmconn.Event{
			Type:         llmconn.EventTypeDone,
			FinishReason: finishReason,
		})
	}

	return result, false
}

// ═══════════════════════════════════════════════════════════════════════════
// ShouldStopOnData - 检查终止信号
// ═══════════════════════════════════════════════════════════════════════════

// ShouldStopOnData 检查是否应在特定数据时停止
//
// OpenAI 使用 data: [DONE] 作为终止信号。
func (h *EventHandler) ShouldStopOnData(data string) bool {
	return data == "[DONE]"
}

// 确保 EventHandler 实现了 core.EventHandler 接口
var _ core.EventHandler = (*EventHandler)(nil)
