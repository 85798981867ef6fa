package llmconn

import "encoding/json"

// ═══════════════════════════════════════════════════════════════════════════
// 流式聚合
// ═══════════════════════════════════════════════════════════════════════════

// StreamResult 流式解析结果
type StreamResult struct {
	Message      Message // 聚合后的完整消息
	FinishReason string  // 完成原因
	Reasoning    string  // 推理内容 (DeepSeek R1, extended thinking 等)
	Err          error   // 流中途的错误事件（如有）
}

// StreamParser 流式响应解析器
//
// 将流式事件聚合为完整消息。支持文本内容、推理内容和多个工具调用的并行聚合。
// 协议无关：OpenAI 和 Anthropic 的事件流都可聚合。
type StreamParser struct {
	textBuf      string
	reasoningBuf string // 推理内容缓冲区
	toolBufs     map[int]*toolBuffer
	maxIndex     int
}

type toolBuffer struct {
	id      string
	name    string
	argsBuf string
}

// NewStreamParser 创建新的流解析器
func NewStreamParser() *StreamParser {
	return &StreamParser{
		toolBufs: make(map[int]*toolBuffer),
	}
}

// Parse 消费整个流并返回聚合结果
//
// 读取所有事件直到流结束，聚合文本内容和工具调用，
// 返回完整的 Message 和完成原因。
//
// 示例：
//
//	stream, _ := conn.Chat().Stream(ctx, messages, nil)
//	defer stream.Close()
//	result := llmconn.NewStreamParser().Parse(stream)
//	fmt.Println(result.Message.GetContent())
func (p *StreamParser) Parse(stream *Stream) StreamResult {
	var finishReason string
	var streamErr error

	for event := range stream.Events() {
		switch event.Type {
		case EventTypeText:
			p.textBuf += event.TextDelta
		case EventTypeReasoning, EventTypeThinking:
			if event.Reasoning != nil {
				p.reasoningBuf += event.Reasoning.ThoughtDelta
			}
		case EventTypeToolCall:
			p.handleToolCall(event.ToolCall)
		case EventTypeDone:
			if finishReason == "" || event.FinishReason != "stop" {
				finishReason = event.FinishReason
			}
		case EventTypeError:
			if event.Error != nil {
				streamErr = event.Error
			} else if event.ErrorMessage != "" {
				streamErr = NewStreamError(event.ErrorMessage, nil)
			}
		default:
			// 忽略其他事件类型
		}
	}

	return StreamResult{
		Message:      p.buildMessage(),
		FinishReason: finishReason,
		Reasoning:    p.reasoningBuf,
		Err:          streamErr,
	}
}

// Feed 增量喂入单个事件
//
// 用于需要实时处理每个事件的场景，而非等待全部完成。
func (p *StreamParser) Feed(event Event) {
	switch event.Type {
	case EventTypeText:
		p.textBuf += event.TextDelta
	case EventTypeReasoning, EventTypeThinking:
		if event.Reasoning != nil {
			p.reasoningBuf += event.Reasoning.ThoughtDelta
		}
	case EventTypeToolCall:
		p.handleToolCall(event.ToolCall)
	default:
		// 忽略其他事件类型
	}
}

// CurrentText 获取当前累积的文本内容
func (p *StreamParser) CurrentText() string {
	return p.textBuf
}

// CurrentReasoning 获取当前累积的推理内容
func (p *StreamParser) CurrentReasoning() string {
	return p.reasoningBuf
}

// Build 构建当前状态的消息
//
// 可以在流式传输过程中调用，获取当前累积的消息状态。
func (p *StreamParser) Build() Message {
	return p.buildMessage()
}

func (p *StreamParser) handleToolCall(tc *ToolCallDelta) {
	if tc == nil {
		return
	}

	buf, exists := p.toolBufs[tc.Index]
	if !exists {
		buf = &toolBuffer{}
		p.toolBufs[tc.Index] = buf
	}

	if tc.ID != "" {
		buf.id = tc.ID
	}
	if tc.Name != "" {
		buf.name = tc.Name
	}
	if tc.ArgumentsDelta != "" {
		buf.argsBuf += tc.ArgumentsDelta
	}

	if tc.Index > p.maxIndex {
		p.maxIndex = tc.Index
	}
}

func (p *StreamParser) buildMessage() Message {
	// 按索引顺序聚合工具调用
	var toolBlocks []ContentBlock
	for i := 0; i <= p.maxIndex; i++ {
		buf, ok := p.toolBufs[i]
		if !ok || buf.id == "" {
			continue
		}

		var args map[string]any
		_ = json.Unmarshal([]byte(buf.argsBuf), &args)

		toolBlocks = append(toolBlocks, &ToolCall{
			ID:    buf.id,
			Name:  buf.name,
			Input: args,
		})
	}

	// 纯文本走 Content 字段，与非流式响应同形
	if len(toolBlocks) == 0 {
		return Message{
			Role:    RoleAssistant,
			Content: p.textBuf,
		}
	}

	var blocks []ContentBlock
	if p.textBuf != "" {
		blocks = append(blocks, &TextBlock{Text: p.textBuf})
	}
	blocks = append(blocks, toolBlocks...)

	return Message{
		Role:          RoleAssistant,
		ContentBlocks: blocks,
	}
}

// ParseStream 便捷函数：消费整个流并返回聚合结果
//
// 等价于 NewStreamParser().Parse(stream)
func ParseStream(stream *Stream) StreamResult {
	return NewStreamParser().Parse(stream)
}
