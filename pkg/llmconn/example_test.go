package llmconn_test

import (
	"context"
	"fmt"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/localmock"
)

// Example_basic 展示连接器的基本用法
func Example_basic() {
	// 创建连接器
	conn := provider.LocalMock(localmock.WithResponse("Hello! I can help you."))
	defer func() { _ = conn.Close() }()

	// 构建消息
	messages := []llmconn.Message{
		llmconn.NewUserMessage("Hello!"),
	}

	// 同步调用
	resp, err := conn.Chat().Invoke(context.Background(), messages, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(resp.Message.Content)
	// Output: Hello! I can help you.
}

// Example_contentBlocks 展示使用内容块构建消息
func Example_contentBlocks() {
	msg := llmconn.Message{
		Role: llmconn.RoleAssistant,
		ContentBlocks: []llmconn.ContentBlock{
			&llmconn.TextBlock{Text: "Here is the result"},
		},
	}

	fmt.Println("Role:", msg.Role)
	fmt.Println("Content:", msg.GetContent())
	// Output:
	// Role: assistant
	// Content: Here is the result
}

// Example_toolCalls 展示工具调用消息
func Example_toolCalls() {
	msg := llmconn.Message{
		Role: llmconn.RoleAssistant,
		ContentBlocks: []llmconn.ContentBlock{
			&llmconn.ToolCall{
				ID:    "call_123",
				Name:  "get_weather",
				Input: map[string]any{"city": "Beijing"},
			},
		},
	}

	fmt.Println("Has tool calls:", msg.HasToolCalls())
	toolCalls := msg.GetToolCalls()
	if len(toolCalls) > 0 {
		fmt.Println("Tool name:", toolCalls[0].Name)
	}
	// Output:
	// Has tool calls: true
	// Tool name: get_weather
}

// Example_stream 展示流式事件处理
func Example_stream() {
	conn := provider.LocalMock(localmock.WithResponse("Streaming"))
	defer func() { _ = conn.Close() }()

	messages := []llmconn.Message{
		llmconn.NewUserMessage("Hello"),
	}

	stream, err := conn.Chat().Stream(context.Background(), messages, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() { _ = stream.Close() }()

	// 逐事件消费
	var text string
	for event := range stream.Events() {
		switch event.Type {
		case llmconn.EventTypeText:
			text += event.TextDelta
		case llmconn.EventTypeError:
			fmt.Println("Error:", event.Error)
		}
	}

	fmt.Println(text)
	// Output: Streaming
}

// Example_parseStream 展示将流式事件聚合为完整响应
func Example_parseStream() {
	conn := provider.LocalMock(localmock.WithResponse("Aggregated"))
	defer func() { _ = conn.Close() }()

	stream, err := conn.Chat().Stream(context.Background(), []llmconn.Message{
		llmconn.NewUserMessage("Hello"),
	}, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	result := llmconn.ParseStream(stream)
	if result.Err != nil {
		fmt.Println("Error:", result.Err)
		return
	}

	fmt.Println("Content:", result.Message.Content)
	fmt.Println("Finish:", result.FinishReason)
	// Output:
	// Content: Aggregated
	// Finish: stop
}

// Example_toolSchema 展示从 Go 结构体生成工具定义
func Example_toolSchema() {
	type WeatherInput struct {
		City string `json:"city" jsonschema:"required" jsonschema_description:"城市名称"`
	}

	tool := llmconn.NewToolSchema("get_weather", "查询城市天气", WeatherInput{})

	fmt.Println("Name:", tool.Name)
	fmt.Println("Type:", tool.InputSchema["type"])
	// Output:
	// Name: get_weather
	// Type: object
}

// Example_optionsReasoning 展示推理强度的统一配置
func Example_optionsReasoning() {
	// 统一推理参数（OpenAI o 系列按 reasoning_effort 下发）
	opts := &llmconn.Options{
		Reasoning: "high", // "minimal"/"low"/"medium"/"high"
		MaxTokens: 8192,
	}

	fmt.Println("Reasoning:", opts.Reasoning)
	fmt.Println("MaxTokens:", opts.MaxTokens)
	// Output:
	// Reasoning: high
	// MaxTokens: 8192
}

// Example_optionsThinkingBudget 展示精确控制思考预算
func Example_optionsThinkingBudget() {
	// Anthropic extended thinking 的 token 预算
	opts := &llmconn.Options{
		ReasoningBudget: 4096,
		MaxTokens:       16000,
	}

	fmt.Println("ReasoningBudget:", opts.ReasoningBudget)
	// Output:
	// ReasoningBudget: 4096
}
