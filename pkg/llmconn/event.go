package llmconn

import (
	"io"
	"sync"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 事件类型 - 统一的流式事件系统
// ═══════════════════════════════════════════════════════════════════════════

// EventType 事件类型
type EventType string

const (
	EventTypeText      EventType = "text"      // 文本增量
	EventTypeToolCall  EventType = "tool_call" // 工具调用增量
	EventTypeReasoning EventType = "reasoning" // 推理过程 (DeepSeek R1 等)
	EventTypeThinking  EventType = "thinking"  // 思考过程 (Anthropic extended thinking)
	EventTypeDone      EventType = "done"      // 完成
	EventTypeError     EventType = "error"     // 错误
)

// Event 统一流式事件
//
// 流式补全的增量单元，覆盖文本增量、工具调用、推理过程、完成与错误。
//
// 使用示例：
//
//	stream, _ := conn.Chat().Stream(ctx, messages, nil)
//	defer stream.Close()
//	for event := range stream.Events() {
//	    switch event.Type {
//	    case llmconn.EventTypeText:
//	        fmt.Print(event.TextDelta)
//	    case llmconn.EventTypeDone:
//	        fmt.Printf("\nDone! Reason: %s\n", event.FinishReason)
//	    }
//	}
type Event struct {
	Type  EventType `json:"type"`
	Index int       `json:"index,omitempty"`

	// Text event - 文本增量
	TextDelta string `json:"text_delta,omitempty"`

	// ToolCall event - 工具调用增量
	ToolCall *ToolCallDelta `json:"tool_call,omitempty"`

	// Reasoning/Thinking event - 推理过程增量
	Reasoning *ReasoningDelta `json:"reasoning,omitempty"`

	// Done event - 完成原因
	FinishReason string `json:"finish_reason,omitempty"`

	// Error event - 错误信息
	Error        error  `json:"-"`               // 错误对象 (不序列化)
	ErrorMessage string `json:"error,omitempty"` // 错误消息 (序列化用)

	// Metadata - 元数据
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Text 获取文本内容（兼容方法）
func (e *Event) Text() string {
	return e.TextDelta
}

// ToolCallDelta 工具调用增量
type ToolCallDelta struct {
	Index          int    `json:"index"`
	ID             string `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	ArgumentsDelta string `json:"arguments_delta,omitempty"`
}

// ReasoningDelta 推理内容增量
type ReasoningDelta struct {
	ThoughtDelta string `json:"thought_delta,omitempty"`
}

// ═══════════════════════════════════════════════════════════════════════════
// Stream 流式游标
// ═══════════════════════════════════════════════════════════════════════════

// Stream 流式响应游标
//
// 惰性、单次、前向的事件序列：迭代驱动底层 HTTP 响应的消费，
// 耗尽后不可重放。提供者信号完成后 Events channel 自动关闭。
//
// 提前放弃迭代时必须调用 Close 释放底层连接，
// 正常迭代到 channel 关闭则无需额外处理（Close 幂等）。
type Stream struct {
	events <-chan *Event
	closer io.Closer

	closeOnce sync.Once
	closeErr  error
}

// NewStream 创建流式游标
//
// closer 为底层连接（可为 nil，如内存实现）。
func NewStream(events <-chan *Event, closer io.Closer) *Stream {
	return &Stream{events: events, closer: closer}
}

// Events 获取事件 channel
func (s *Stream) Events() <-chan *Event {
	return s.events
}

// Recv 接收下一个事件
//
// 流耗尽时返回 (nil, false)。
func (s *Stream) Recv() (*Event, bool) {
	event, ok := <-s.events
	return event, ok
}

// Close 关闭流并释放底层连接
//
// 幂等。关闭后解析 goroutine 随读取失败退出并关闭 Events channel。
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}
