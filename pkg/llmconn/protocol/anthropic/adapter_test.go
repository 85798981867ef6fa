package anthropic

import (
	"testing"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// ConvertToAPI 测试
// ═══════════════════════════════════════════════════════════════════════════

func TestAdapter_ConvertToAPI_TextMessage(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role:    llmconn.RoleUser,
			Content: "Hello, Claude!",
		},
	}

	result := adapter.ConvertToAPI(messages)

	if len(result) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result))
	}

	if result[0]["role"] != "user" {
		t.Errorf("Expected role 'user', got %v", result[0]["role"])
	}

	content, ok := result[0]["content"].([]map[string]any)
	if !ok {
		t.Fatalf("Expected content array, got %T", result[0]["content"])
	}

	if len(content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(content))
	}

	if content[0]["type"] != "text" {
		t.Errorf("Expected type 'text', got %v", content[0]["type"])
	}

	if content[0]["text"] != "Hello, Claude!" {
		t.Errorf("Expected text 'Hello, Claude!', got %v", content[0]["text"])
	}
}

func TestAdapter_ConvertToAPI_ToolUse(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleAssistant,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.TextBlock{Text: "Let me check the weather."},
				&llmconn.ToolCall{
					ID:   "toolu_123",
					Name: "get_weather",
					Input: map[string]any{
						"location": "Paris",
						"unit":     "celsius",
					},
				},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)

	if len(result) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result))
	}

	content, ok := result[0]["content"].([]map[string]any)
	if !ok {
		t.Fatalf("Expected content array, got %T", result[0]["content"])
	}

	if len(content) != 2 {
		t.Fatalf("Expected 2 content blocks (text + tool_use), got %d", len(content))
	}

	if content[0]["type"] != "text" {
		t.Errorf("Expected first block type 'text', got %v", content[0]["type"])
	}

	if content[1]["type"] != "tool_use" {
		t.Errorf("Expected second block type 'tool_use', got %v", content[1]["type"])
	}

	if content[1]["id"] != "toolu_123" {
		t.Errorf("Expected id 'toolu_123', got %v", content[1]["id"])
	}

	if content[1]["name"] != "get_weather" {
		t.Errorf("Expected name 'get_weather', got %v", content[1]["name"])
	}

	// ⚠️ 关键验证：参数必须是对象，不是 JSON 字符串
	input, ok := content[1]["input"].(map[string]any)
	if !ok {
		t.Fatalf("Expected input to be map[string]any, got %T", content[1]["input"])
	}

	if input["location"] != "Paris" {
		t.Errorf("Expected location 'Paris', got %v", input["location"])
	}

	if input["unit"] != "celsius" {
		t.Errorf("Expected unit 'celsius', got %v", input["unit"])
	}
}

func TestAdapter_ConvertToAPI_ToolResult(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.ToolResultBlock{
					ToolUseID: "toolu_123",
					Content:   "15 degrees, sunny",
				},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)

	if len(result) != 1 {
		t.Fatalf("Expected 1 message (inline tool_result), got %d", len(result))
	}

	content, ok := result[0]["content"].([]map[string]any)
	if !ok {
		t.Fatalf("Expected content array, got %T", result[0]["content"])
	}

	// ⚠️ 关键验证：ToolResult 内联在 content 数组中，不展开为独立消息
	if content[0]["type"] != "tool_result" {
		t.Errorf("Expected type 'tool_result', got %v", content[0]["type"])
	}

	if content[0]["tool_use_id"] != "toolu_123" {
		t.Errorf("Expected tool_use_id 'toolu_123', got %v", content[0]["tool_use_id"])
	}

	if content[0]["content"] != "15 degrees, sunny" {
		t.Errorf("Expected content, got %v", content[0]["content"])
	}

	if _, exists := content[0]["is_error"]; exists {
		t.Error("is_error should be omitted for successful results")
	}
}

func TestAdapter_ConvertToAPI_ToolRoleMapsToUser(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleTool,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.ToolResultBlock{
					ToolUseID: "toolu_456",
					Content:   "done",
				},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)

	if len(result) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result))
	}

	// ⚠️ 关键验证：Messages API 不接受 tool 角色，必须归入 user
	if result[0]["role"] != "user" {
		t.Errorf("Expected role 'user', got %v", result[0]["role"])
	}

	content, ok := result[0]["content"].([]map[string]any)
	if !ok {
		t.Fatalf("Expected content array, got %T", result[0]["content"])
	}
	if content[0]["type"] != "tool_result" {
		t.Errorf("Expected type 'tool_result', got %v", content[0]["type"])
	}
}

func TestAdapter_ConvertToAPI_ToolResultError(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.ToolResultBlock{
					ToolUseID: "toolu_456",
					Content:   "connection timed out",
					IsError:   true,
				},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)
	content := result[0]["content"].([]map[string]any)

	if content[0]["is_error"] != true {
		t.Errorf("Expected is_error true, got %v", content[0]["is_error"])
	}
}

func TestAdapter_ConvertToAPI_SkipSystemMessage(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{Role: llmconn.RoleSystem, Content: "You are helpful."},
		{Role: llmconn.RoleUser, Content: "Hi"},
	}

	result := adapter.ConvertToAPI(messages)

	// 系统消息由 Transformer 处理为独立的 system 参数
	if len(result) != 1 {
		t.Fatalf("Expected 1 message (system skipped), got %d", len(result))
	}

	if result[0]["role"] != "user" {
		t.Errorf("Expected role 'user', got %v", result[0]["role"])
	}
}

func TestAdapter_ConvertToAPI_SkipEmptyMessage(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{Role: llmconn.RoleUser, Content: ""},
		{Role: llmconn.RoleUser, Content: "Hi"},
	}

	result := adapter.ConvertToAPI(messages)

	// Anthropic 要求 content 非空，空消息被跳过
	if len(result) != 1 {
		t.Fatalf("Expected 1 message (empty skipped), got %d", len(result))
	}
}

func TestAdapter_ConvertToAPI_ImageURL(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.ImageBlock{URL: "https://example.com/cat.jpg"},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)
	content := result[0]["content"].([]map[string]any)

	if content[0]["type"] != "image" {
		t.Errorf("Expected type 'image', got %v", content[0]["type"])
	}

	source, ok := content[0]["source"].(map[string]any)
	if !ok {
		t.Fatalf("Expected source map, got %T", content[0]["source"])
	}

	if source["type"] != "url" {
		t.Errorf("Expected source type 'url', got %v", source["type"])
	}

	if source["url"] != "https://example.com/cat.jpg" {
		t.Errorf("Expected url, got %v", source["url"])
	}
}

func TestAdapter_ConvertToAPI_ImageBase64(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.ImageBlock{Data: "iVBORw0KGgo=", MediaType: "image/png"},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)
	content := result[0]["content"].([]map[string]any)
	source := content[0]["source"].(map[string]any)

	if source["type"] != "base64" {
		t.Errorf("Expected source type 'base64', got %v", source["type"])
	}

	if source["media_type"] != "image/png" {
		t.Errorf("Expected media_type 'image/png', got %v", source["media_type"])
	}

	if source["data"] != "iVBORw0KGgo=" {
		t.Errorf("Expected raw base64 data, got %v", source["data"])
	}
}

func TestAdapter_ConvertToAPI_DocumentFileID(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.DocumentBlock{FileID: "file_abc123"},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)
	content := result[0]["content"].([]map[string]any)

	if content[0]["type"] != "document" {
		t.Errorf("Expected type 'document', got %v", content[0]["type"])
	}

	source := content[0]["source"].(map[string]any)

	if source["type"] != "file" {
		t.Errorf("Expected source type 'file', got %v", source["type"])
	}

	if source["file_id"] != "file_abc123" {
		t.Errorf("Expected file_id, got %v", source["file_id"])
	}
}

func TestAdapter_ConvertToAPI_DocumentBase64(t *testing.T) {
	adapter := NewAdapter()
	messages := []llmconn.Message{
		{
			Role: llmconn.RoleUser,
			ContentBlocks: []llmconn.ContentBlock{
				&llmconn.DocumentBlock{Data: "JVBERi0xLjQ=", MediaType: "application/pdf"},
			},
		},
	}

	result := adapter.ConvertToAPI(messages)
	content := result[0]["content"].([]map[string]any)
	source := content[0]["source"].(map[string]any)

	if source["type"] != "base64" {
		t.Errorf("Expected source type 'base64', got %v", source["type"])
	}

	if source["media_type"] != "application/pdf" {
		t.Errorf("Expected media_type 'application/pdf', got %v", source["media_type"])
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertFromAPI 测试
// ═══════════════════════════════════════════════════════════════════════════

func TestAdapter_ConvertFromAPI_TextResponse(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": "Hello! How can I help?"},
		},
		"stop_reason": "end_turn",
	}

	msg, finishReason := adapter.ConvertFromAPI(resp)

	if msg.Role != llmconn.RoleAssistant {
		t.Errorf("Expected role assistant, got %v", msg.Role)
	}

	// 单文本块响应同时填充 Content
	if msg.Content != "Hello! How can I help?" {
		t.Errorf("Expected content, got %q", msg.Content)
	}

	if finishReason != "stop" {
		t.Errorf("Expected finish reason 'stop' (end_turn mapped), got %q", finishReason)
	}
}

func TestAdapter_ConvertFromAPI_ToolUse(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": "Let me look that up."},
			map[string]any{
				"type": "tool_use",
				"id":   "toolu_xyz",
				"name": "search",
				"input": map[string]any{
					"query": "weather in Tokyo",
				},
			},
		},
		"stop_reason": "tool_use",
	}

	msg, finishReason := adapter.ConvertFromAPI(resp)

	if len(msg.ContentBlocks) != 2 {
		t.Fatalf("Expected 2 content blocks, got %d", len(msg.ContentBlocks))
	}

	// 多块响应时 Content 清空
	if msg.Content != "" {
		t.Errorf("Expected empty Content with multiple blocks, got %q", msg.Content)
	}

	toolCall, ok := msg.ContentBlocks[1].(*llmconn.ToolCall)
	if !ok {
		t.Fatalf("Expected ToolCall, got %T", msg.ContentBlocks[1])
	}

	if toolCall.ID != "toolu_xyz" {
		t.Errorf("Expected id 'toolu_xyz', got %v", toolCall.ID)
	}

	if toolCall.Name != "search" {
		t.Errorf("Expected name 'search', got %v", toolCall.Name)
	}

	// ⚠️ 关键验证：参数直接是对象，无需反序列化
	if toolCall.Input["query"] != "weather in Tokyo" {
		t.Errorf("Expected query, got %v", toolCall.Input["query"])
	}

	if finishReason != "tool_calls" {
		t.Errorf("Expected 'tool_calls' (tool_use mapped), got %q", finishReason)
	}
}

func TestAdapter_ConvertFromAPI_ThinkingBlock(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"content": []any{
			map[string]any{
				"type":      "thinking",
				"thinking":  "The user wants the capital of France.",
				"signature": "sig_abc",
			},
			map[string]any{"type": "text", "text": "Paris."},
		},
		"stop_reason": "end_turn",
	}

	msg, _ := adapter.ConvertFromAPI(resp)

	if len(msg.ContentBlocks) != 2 {
		t.Fatalf("Expected 2 content blocks, got %d", len(msg.ContentBlocks))
	}

	thinking, ok := msg.ContentBlocks[0].(*llmconn.ThinkingBlock)
	if !ok {
		t.Fatalf("Expected ThinkingBlock, got %T", msg.ContentBlocks[0])
	}

	if thinking.Thinking != "The user wants the capital of France." {
		t.Errorf("Expected thinking text, got %q", thinking.Thinking)
	}

	if thinking.Signature != "sig_abc" {
		t.Errorf("Expected signature 'sig_abc', got %q", thinking.Signature)
	}
}

func TestAdapter_ConvertFromAPI_EmptyContent(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"content":     []any{},
		"stop_reason": "end_turn",
	}

	msg, finishReason := adapter.ConvertFromAPI(resp)

	if msg.Content != "" || len(msg.ContentBlocks) != 0 {
		t.Errorf("Expected empty message, got %+v", msg)
	}

	if finishReason != "stop" {
		t.Errorf("Expected 'stop', got %q", finishReason)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// stop_reason 映射测试
// ═══════════════════════════════════════════════════════════════════════════

func TestConvertStopReason(t *testing.T) {
	tests := []struct {
		stopReason string
		expected   string
	}{
		{"end_turn", "stop"},
		{"stop_sequence", "stop"},
		{"max_tokens", "length"},
		{"tool_use", "tool_calls"},
		{"refusal", "content_filter"},
		{"pause_turn", "pause_turn"}, // 未知值透传
		{"", ""},
	}

	for _, tt := range tests {
		if got := convertStopReason(tt.stopReason); got != tt.expected {
			t.Errorf("convertStopReason(%q) = %q, want %q", tt.stopReason, got, tt.expected)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ConvertUsage 测试
// ═══════════════════════════════════════════════════════════════════════════

func TestAdapter_ConvertUsage(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"usage": map[string]any{
			"input_tokens":  float64(15),
			"output_tokens": float64(5),
		},
	}

	usage := adapter.ConvertUsage(resp)

	if usage == nil {
		t.Fatal("Expected usage, got nil")
	}

	if usage.InputTokens != 15 {
		t.Errorf("Expected 15 input tokens, got %d", usage.InputTokens)
	}

	if usage.OutputTokens != 5 {
		t.Errorf("Expected 5 output tokens, got %d", usage.OutputTokens)
	}

	// ⚠️ Anthropic 不返回 total_tokens，手动求和
	if usage.TotalTokens != 20 {
		t.Errorf("Expected 20 total tokens (computed), got %d", usage.TotalTokens)
	}
}

func TestAdapter_ConvertUsage_CacheRead(t *testing.T) {
	adapter := NewAdapter()
	resp := map[string]any{
		"usage": map[string]any{
			"input_tokens":            float64(100),
			"output_tokens":           float64(30),
			"cache_read_input_tokens": float64(80),
		},
	}

	usage := adapter.ConvertUsage(resp)

	if usage.CachedTokens != 80 {
		t.Errorf("Expected 80 cached tokens, got %d", usage.CachedTokens)
	}
}

func TestAdapter_ConvertUsage_Missing(t *testing.T) {
	adapter := NewAdapter()

	if usage := adapter.ConvertUsage(map[string]any{}); usage != nil {
		t.Errorf("Expected nil usage, got %+v", usage)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 系统消息策略测试
// ═══════════════════════════════════════════════════════════════════════════

func TestAdapter_GetSystemMessageHandling(t *testing.T) {
	adapter := NewAdapter()

	if adapter.GetSystemMessageHandling() != core.SystemSeparate {
		t.Error("Expected SystemSeparate strategy")
	}
}
