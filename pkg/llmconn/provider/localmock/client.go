package localmock

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 本地 Mock 连接器
// ═══════════════════════════════════════════════════════════════════════════

// CallRecord 记录一次调用的详情
type CallRecord struct {
	Messages []llmconn.Message
	Options  *llmconn.Options
	Time     time.Time
}

// Client 本地 Mock 连接器
//
// 实现 [llmconn.Connector] 接口，不发起任何网络请求：
//   - Chat: 预设响应 / 响应队列 / 动态函数 / 场景配置
//   - Batch: 内存中的作业生命周期（validating → in_progress → completed）
//   - File: 内存文件存储
//
// 用于测试和离线开发。
type Client struct {
	mu              sync.RWMutex
	response        string                    // 默认响应
	responses       []string                  // 响应队列（依次返回，用完后循环）
	respIdx         int                       // 当前响应索引
	respFunc        ResponseFunc              // 动态响应函数
	msgFunc         MessageResponseFunc       // 完整消息响应函数（支持工具调用）
	delay           time.Duration             // 响应延迟
	err             error                     // 返回错误
	calls           []CallRecord              // 调用记录
	counter         int                       // 调用计数
	scenarios       map[string]*scenarioState // 场景状态（通过 name 索引）
	currentScenario string                    // 当前使用的场景名称

	batches *batchStore
	files   *fileStore
}

// ResponseFunc 动态响应函数类型
// 接收消息列表和调用次数，返回响应文本
type ResponseFunc func(messages []llmconn.Message, callCount int) string

// MessageResponseFunc 完整消息响应函数类型
// 接收消息列表和调用次数，返回完整的 Message（可包含 ToolCalls）
type MessageResponseFunc func(messages []llmconn.Message, callCount int) llmconn.Message

// New 创建本地 Mock 连接器
//
// 使用示例:
//
//	conn := localmock.New()                                // 默认响应
//	conn := localmock.New(localmock.WithResponse("hi"))    // 预设响应
//	conn := localmock.New(localmock.WithConfigFile(path))  // 场景配置文件
func New(opts ...Option) *Client {
	c := &Client{
		response: "This is a mock response.",
		calls:    make([]CallRecord, 0),
		batches:  newBatchStore(),
		files:    newFileStore(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Option 配置选项函数
type Option func(*Client)

// WithResponse 设置预设响应文本
func WithResponse(text string) Option {
	return func(c *Client) {
		c.response = text
	}
}

// WithResponses 设置响应队列（依次返回，用完后循环）
func WithResponses(texts ...string) Option {
	return func(c *Client) {
		c.responses = texts
	}
}

// WithResponseFunc 设置动态响应函数
func WithResponseFunc(fn ResponseFunc) Option {
	return func(c *Client) {
		c.respFunc = fn
	}
}

// WithMessageFunc 设置完整消息响应函数（支持工具调用）
func WithMessageFunc(fn MessageResponseFunc) Option {
	return func(c *Client) {
		c.msgFunc = fn
	}
}

// WithDelay 设置响应延迟
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// WithError 设置返回错误
func WithError(err error) Option {
	return func(c *Client) {
		c.err = err
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Connector 接口实现
// ═══════════════════════════════════════════════════════════════════════════

// Chat 获取对话补全接口
func (c *Client) Chat() llmconn.ChatAPI {
	return &chatService{client: c}
}

// Batch 获取批处理接口
func (c *Client) Batch() llmconn.BatchAPI {
	return &batchService{client: c}
}

// File 获取文件接口
func (c *Client) File() llmconn.FileAPI {
	return &fileService{client: c}
}

// Close 关闭连接器
func (c *Client) Close() error {
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 对话补全服务
// ═══════════════════════════════════════════════════════════════════════════

// chatService 对话补全服务
type chatService struct {
	client *Client
}

// Invoke 同步补全
func (s *chatService) Invoke(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Response, error) {
	c := s.client

	c.mu.Lock()
	c.counter++
	delay := c.delay
	err := c.err

	c.calls = append(c.calls, CallRecord{
		Messages: messages,
		Options:  opts,
		Time:     time.Now(),
	})

	msg, finishReason, scripted := c.nextResponse(messages)
	c.mu.Unlock()

	// 模拟延迟
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// 模拟错误
	if err != nil {
		return nil, err
	}

	outputTokens := int64(len(msg.GetContent()) / 4)
	if scripted {
		outputTokens = 20
	}

	return &llmconn.Response{
		Message:      msg,
		FinishReason: finishReason,
		Model:        llmconn.ProviderTypeLocalMock.DefaultModel(),
		Usage:        mockUsage(messages, outputTokens),
	}, nil
}

// Stream 流式补全
//
// 与 Invoke 走同一响应决策（场景 → 消息函数 → 简单响应）：
// 文本逐字符以文本事件返回，工具调用以 tool_call 事件返回，
// 最后发送完成事件。返回的 Stream 游标与真实连接器行为一致（Close 幂等）。
func (s *chatService) Stream(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Stream, error) {
	c := s.client

	c.mu.Lock()
	c.counter++
	delay := c.delay
	err := c.err

	c.calls = append(c.calls, CallRecord{
		Messages: messages,
		Options:  opts,
		Time:     time.Now(),
	})

	msg, finishReason, _ := c.nextResponse(messages)
	c.mu.Unlock()

	// 立即返回错误
	if err != nil {
		return nil, err
	}

	text := msg.GetContent()
	toolCalls := msg.GetToolCalls()
	events := make(chan *llmconn.Event, len(text)+len(toolCalls)+1)

	go func() {
		defer close(events)

		// 模拟首包延迟
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		// 逐字符流式返回
		for _, ch := range text {
			select {
			case <-ctx.Done():
				return
			case events <- &llmconn.Event{
				Type:      llmconn.EventTypeText,
				TextDelta: string(ch),
			}:
			}
		}

		for i, tc := range toolCalls {
			args, _ := json.Marshal(tc.Input)
			select {
			case <-ctx.Done():
				return
			case events <- &llmconn.Event{
				Type:  llmconn.EventTypeToolCall,
				Index: i,
				ToolCall: &llmconn.ToolCallDelta{
					Index:          i,
					ID:             tc.ID,
					Name:           tc.Name,
					ArgumentsDelta: string(args),
				},
			}:
			}
		}

		events <- &llmconn.Event{
			Type:         llmconn.EventTypeDone,
			FinishReason: finishReason,
		}
	}()

	return llmconn.NewStream(events, nil), nil
}

// nextResponse 计算下一条响应消息（需要在锁内调用）
//
// 决策顺序与 Invoke/Stream 共用：场景 → 消息函数 → 简单响应。
// scripted 表示响应来自场景或消息函数。
func (c *Client) nextResponse(messages []llmconn.Message) (msg llmconn.Message, finishReason string, scripted bool) {
	var msgResp *llmconn.Message
	if c.currentScenario != "" {
		msgResp = c.getScenarioResponse(messages)
	}
	if msgResp == nil && c.msgFunc != nil {
		m := c.msgFunc(messages, c.counter)
		msgResp = &m
	}

	if msgResp == nil {
		return llmconn.Message{
			Role:    llmconn.RoleAssistant,
			Content: c.getResponse(messages),
		}, "stop", false
	}

	msgResp.Role = llmconn.RoleAssistant
	finishReason = "stop"
	if msgResp.HasToolCalls() {
		finishReason = "tool_calls"
	}
	return *msgResp, finishReason, true
}

// getResponse 获取当前响应（内部方法，需要在锁内调用）
func (c *Client) getResponse(messages []llmconn.Message) string {
	// 优先使用动态响应函数
	if c.respFunc != nil {
		return c.respFunc(messages, c.counter)
	}

	// 其次使用响应队列
	if len(c.responses) > 0 {
		resp := c.responses[c.respIdx%len(c.responses)]
		c.respIdx++
		return resp
	}

	return c.response
}

// mockUsage 构造模拟用量
func mockUsage(messages []llmconn.Message, outputTokens int64) *llmconn.TokenUsage {
	input := int64(len(messages) * 10)
	return &llmconn.TokenUsage{
		InputTokens:  input,
		OutputTokens: outputTokens,
		TotalTokens:  input + outputTokens,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 调用记录与动态控制
// ═══════════════════════════════════════════════════════════════════════════

// SetResponse 动态修改响应（线程安全）
func (c *Client) SetResponse(text string) {
	c.mu.Lock()
	c.response = text
	c.mu.Unlock()
}

// SetError 动态修改错误（线程安全）
func (c *Client) SetError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Calls 返回所有调用记录
func (c *Client) Calls() []CallRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]CallRecord, len(c.calls))
	copy(result, c.calls)
	return result
}

// CallCount 返回调用次数
func (c *Client) CallCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counter
}

// LastCall 返回最后一次调用记录
func (c *Client) LastCall() *CallRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.calls) == 0 {
		return nil
	}
	call := c.calls[len(c.calls)-1]
	return &call
}

// Reset 重置调用记录和计数器
func (c *Client) Reset() {
	c.mu.Lock()
	c.calls = make([]CallRecord, 0)
	c.counter = 0
	c.respIdx = 0
	c.mu.Unlock()
}

// 编译时接口检查
var (
	_ llmconn.Connector = (*Client)(nil)
	_ llmconn.ChatAPI   = (*chatService)(nil)
)
