package anthropic

import (
	"context"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// 对话补全服务
// ═══════════════════════════════════════════════════════════════════════════

// defaultMaxTokens Anthropic 要求 max_tokens 必须提供
const defaultMaxTokens = 8192

// minThinkingBudget Extended Thinking 的最小 token 预算
const minThinkingBudget = 1024

// chatService 对话补全服务
//
// 实现 [llmconn.ChatAPI] 接口与 core.RequestBuilder 接口。
type chatService struct {
	client *Client
}

// Invoke 同步补全
//
// 发送消息到 Claude 并等待完整响应。
func (s *chatService) Invoke(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Response, error) {
	return s.client.base.Complete(ctx, messages, opts, s)
}

// Stream 流式补全
//
// 返回流式游标，逐事件接收 Claude 响应。
func (s *chatService) Stream(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Stream, error) {
	return s.client.base.Stream(ctx, messages, opts, s)
}

// ═══════════════════════════════════════════════════════════════════════════
// 请求构建
// ═══════════════════════════════════════════════════════════════════════════

// BuildRequest 构建 API 请求体
//
// 实现 core.RequestBuilder 接口。
//
// Anthropic 协议要求：
//   - max_tokens 必须提供（默认 8192）
//   - 系统提示使用独立的 system 参数
//   - 工具参数名为 input_schema（非 parameters）
func (s *chatService) BuildRequest(messages []llmconn.Message, opts *llmconn.Options, stream bool) (map[string]any, error) {
	if opts == nil {
		opts = &llmconn.Options{}
	}

	// 确定模型（请求选项优先）
	model := opts.Model
	if model == "" {
		model = s.client.config.GetModel()
	}

	// 提取系统提示并转换消息
	systemPrompt := core.ExtractSystemPrompt(messages, opts)
	apiMessages := s.client.base.Transformer().BuildAPIMessages(messages, systemPrompt)

	req := map[string]any{
		"model":      model,
		"messages":   apiMessages,
		"max_tokens": defaultMaxTokens,
		"stream":     stream,
	}

	// Anthropic 使用独立的 system 参数
	if systemPrompt != "" {
		req["system"] = systemPrompt
	}

	// 应用选项
	if opts.MaxTokens > 0 {
		req["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req["temperature"] = opts.Temperature
	}
	if opts.TopP > 0 {
		req["top_p"] = opts.TopP
	}
	if len(opts.StopSequences) > 0 {
		req["stop_sequences"] = opts.StopSequences
	}

	// 工具定义
	if len(opts.Tools) > 0 {
		tools := make([]map[string]any, 0, len(opts.Tools))
		for _, tool := range opts.Tools {
			tools = append(tools, map[string]any{
				"name":         tool.Name,
				"description":  tool.Description,
				"input_schema": tool.InputSchema,
			})
		}
		req["tools"] = tools
	}

	// Extended Thinking（预算非零时启用）
	if opts.ReasoningBudget > 0 {
		budget := opts.ReasoningBudget
		if budget < minThinkingBudget {
			budget = minThinkingBudget
		}
		req["thinking"] = map[string]any{
			"type":          "enabled",
			"budget_tokens": budget,
		}
	}

	return req, nil
}

// 确保 chatService 实现了接口
var (
	_ llmconn.ChatAPI     = (*chatService)(nil)
	_ core.RequestBuilder = (*chatService)(nil)
)
