package openai

import (
	"context"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// 对话补全服务
// ═══════════════════════════════════════════════════════════════════════════

// chatService 对话补全服务
//
// 实现 [llmconn.ChatAPI] 接口与 core.RequestBuilder 接口。
type chatService struct {
	client *Client
}

// Invoke 同步补全
//
// 发送消息到 LLM 并等待完整响应。
func (s *chatService) Invoke(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Response, error) {
	return s.client.base.Complete(ctx, messages, opts, s)
}

// Stream 流式补全
//
// 返回流式游标，逐事件接收 LLM 响应。
// 使用 [llmconn.ParseStream] 聚合完整消息。
func (s *chatService) Stream(ctx context.Context, messages []llmconn.Message, opts *llmconn.Options) (*llmconn.Stream, error) {
	return s.client.base.Stream(ctx, messages, opts, s)
}

// ═══════════════════════════════════════════════════════════════════════════
// 请求构建
// ═══════════════════════════════════════════════════════════════════════════

// BuildRequest 构建 API 请求体
//
// 实现 core.RequestBuilder 接口。opts.Model 覆盖配置的默认模型。
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
		"model":    model,
		"messages": apiMessages,
		"stream":   stream,
	}

	// 流式请求附带用量统计
	if stream {
		req["stream_options"] = map[string]any{"include_usage": true}
	}

	// 应用选项
	if opts.MaxTokens > 0 {
		req["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		// Reasoning 模型强制 temperature 为 1
		req["temperature"] = AdaptTemperatureForModel(model, opts.Temperature)
	}
	if opts.TopP > 0 && !IsReasoningModel(model) {
		// Reasoning 模型不支持 top_p
		req["top_p"] = opts.TopP
	}
	if opts.FrequencyPenalty != 0 {
		req["frequency_penalty"] = opts.FrequencyPenalty
	}
	if opts.PresencePenalty != 0 {
		req["presence_penalty"] = opts.PresencePenalty
	}
	if len(opts.StopSequences) > 0 {
		req["stop"] = opts.StopSequences
	}

	// 工具定义
	if len(opts.Tools) > 0 {
		tools := make([]map[string]any, 0, len(opts.Tools))
		for _, tool := range opts.Tools {
			tools = append(tools, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        tool.Name,
					"description": tool.Description,
					"parameters":  tool.InputSchema,
				},
			})
		}
		req["tools"] = tools
	}

	// Reasoning 力度（o1/o3 等 Reasoning 模型）
	if opts.Reasoning != "" {
		if !IsValidReasoningEffort(opts.Reasoning) {
			return nil, llmconn.NewInvalidRequestError(0, "invalid reasoning effort: "+opts.Reasoning)
		}
		req["reasoning_effort"] = opts.Reasoning
	}

	// 结构化输出
	if opts.ResponseFormat != nil {
		switch opts.ResponseFormat.Type {
		case "json_schema":
			req["response_format"] = map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   opts.ResponseFormat.Name,
					"schema": opts.ResponseFormat.Schema,
				},
			}
		case "json_object":
			req["response_format"] = map[string]any{"type": "json_object"}
		}
	}

	return req, nil
}

// 确保 chatService 实现了接口
var (
	_ llmconn.ChatAPI     = (*chatService)(nil)
	_ core.RequestBuilder = (*chatService)(nil)
)
