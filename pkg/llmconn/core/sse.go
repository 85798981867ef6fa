package core

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// SSE 事件处理器接口
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler SSE 事件处理器接口
//
// 每个 Provider 实现此接口来处理协议特有的 SSE 事件格式。
//
// 协议差异：
//   - OpenAI: 无显式事件类型，总是 "data:" 前缀，[DONE] 终止
//   - Anthropic: 有显式事件类型（event:），由 message_stop 事件终止
type EventHandler interface {
	// HandleEvent 处理单个 SSE 事件
	//
	// 参数：
	//   - eventType: 事件类型（OpenAI 为空，Anthropic 有值）
	//   - data: 已解析的事件数据 map
	//
	// 返回：
	//   - events: 转换后的 Event 列表（一个事件可能产生多个 event）
	//   - stop: 是否应该停止解析
	HandleEvent(eventType string, data map[string]any) (events []*llmconn.Event, stop bool)

	// ShouldStopOnData 检查未解析的数据行是否为终止信号
	//
	// OpenAI 检查 data == "[DONE]"；Anthropic 总是返回 false。
	ShouldStopOnData(data string) bool
}

// ═══════════════════════════════════════════════════════════════════════════
// SSE 解析器
// ═══════════════════════════════════════════════════════════════════════════

// SSEParser SSE (Server-Sent Events) 解析器
//
// 职责：
//   - 解析 SSE 流格式（event:/data: 行）
//   - 处理协议差异（OpenAI [DONE] vs Anthropic event types）
//   - 委托 EventHandler 处理具体事件
//
// SSE 格式规范：
//
//	event: event_type
//	data: {"key": "value"}
//
//	data: {"key": "value"}
//
// JSON 解析失败的行静默忽略，继续处理下一行。
type SSEParser struct {
	handler EventHandler
}

// NewSSEParser 创建 SSE 解析器
func NewSSEParser(handler EventHandler) *SSEParser {
	return &SSEParser{handler: handler}
}

// Parse 解析 SSE 流
//
// 逐行扫描 body，解析 event:/data: 行并委托 handler 处理，
// 转换后的事件发送到 events channel。
//
// 行为：
//   - 自动关闭 body 和 events channel
//   - 遇到终止信号或 handler 返回 stop 时退出
//   - body 被提前关闭（Stream.Close）时扫描失败退出，channel 照常关闭
//
// 此方法应在 goroutine 中调用，channel 缓冲区建议 10。
func (p *SSEParser) Parse(body io.ReadCloser, events chan<- *llmconn.Event) {
	defer func() { _ = body.Close() }()
	defer close(events)

	scanner := bufio.NewScanner(body)
	var currentEvent string

	for scanner.Scan() {
		line := scanner.Text()

		// 解析事件类型（Anthropic 使用）
		// 格式: event: message_start
		if after, ok := strings.CutPrefix(line, "event: "); ok {
			currentEvent = after
			continue
		}

		// 解析数据行
		// 格式: data: {"key": "value"}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")

		// 检查终止信号（OpenAI [DONE]）
		if p.handler.ShouldStopOnData(data) {
			events <- &llmconn.Event{Type: llmconn.EventTypeDone, FinishReason: "stop"}
			return
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			continue
		}

		parsedEvents, shouldStop := p.handler.HandleEvent(currentEvent, payload)
		for _, event := range parsedEvents {
			events <- event
		}

		if shouldStop {
			return
		}
	}
}
