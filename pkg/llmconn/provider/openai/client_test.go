package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 配置测试
// ═══════════════════════════════════════════════════════════════════════════

func TestNew_NilConfig(t *testing.T) {
	client, err := New(nil)

	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, llmconn.IsConfigError(err))
}

func TestNew_MissingAPIKey(t *testing.T) {
	client, err := New(&Config{})

	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, llmconn.IsConfigError(err))
	assert.Contains(t, err.Error(), "API key")
}

func TestConfig_GetDefaults(t *testing.T) {
	cfg := &Config{APIKey: "sk-test"}

	baseURL, model, timeout := cfg.GetDefaults()

	assert.Equal(t, "https://api.openai.com/v1", baseURL)
	assert.Equal(t, "gpt-4o-mini", model)
	assert.Equal(t, 120*time.Second, timeout)
}

func TestConfig_GetDefaults_Custom(t *testing.T) {
	cfg := &Config{
		APIKey:  "sk-test",
		BaseURL: "https://proxy.example.com/v1",
		Model:   "gpt-4-turbo",
		Timeout: 30 * time.Second,
	}

	baseURL, model, timeout := cfg.GetDefaults()

	assert.Equal(t, "https://proxy.example.com/v1", baseURL)
	assert.Equal(t, "gpt-4-turbo", model)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestConfig_BuildHeaders(t *testing.T) {
	cfg := &Config{
		APIKey:       "sk-test",
		Organization: "org-123",
		Headers:      map[string]string{"X-Custom": "value"},
	}

	headers := cfg.BuildHeaders()

	assert.Equal(t, "Bearer sk-test", headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "org-123", headers["OpenAI-Organization"])
	assert.Equal(t, "value", headers["X-Custom"])
}

func TestConfig_ProviderName(t *testing.T) {
	assert.Equal(t, "openai", (&Config{}).ProviderName())
	assert.Equal(t, "groq", (&Config{Name: "groq"}).ProviderName())
}

// ═══════════════════════════════════════════════════════════════════════════
// BuildRequest 测试
// ═══════════════════════════════════════════════════════════════════════════

func newTestChatService(t *testing.T, cfg *Config) *chatService {
	t.Helper()
	client, err := New(cfg)
	require.NoError(t, err)
	return client.Chat().(*chatService)
}

func TestBuildRequest_Basic(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test", Model: "gpt-4o"})

	req, err := svc.BuildRequest([]llmconn.Message{
		llmconn.NewUserMessage("Hello"),
	}, nil, false)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", req["model"])
	assert.Equal(t, false, req["stream"])
	assert.NotContains(t, req, "stream_options")

	messages := req["messages"].([]map[string]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0]["role"])
}

func TestBuildRequest_ModelOverride(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test", Model: "gpt-4o-mini"})

	req, err := svc.BuildRequest(nil, &llmconn.Options{Model: "gpt-4-turbo"}, false)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4-turbo", req["model"])
}

func TestBuildRequest_StreamOptions(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test"})

	req, err := svc.BuildRequest(nil, nil, true)

	require.NoError(t, err)
	assert.Equal(t, true, req["stream"])
	// 流式请求附带用量统计
	assert.Equal(t, map[string]any{"include_usage": true}, req["stream_options"])
}

func TestBuildRequest_SamplingOptions(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test"})

	req, err := svc.BuildRequest(nil, &llmconn.Options{
		MaxTokens:        500,
		Temperature:      0.7,
		TopP:             0.9,
		FrequencyPenalty: 0.5,
		PresencePenalty:  -0.5,
		StopSequences:    []string{"END"},
	}, false)

	require.NoError(t, err)
	assert.Equal(t, 500, req["max_tokens"])
	assert.Equal(t, 0.7, req["temperature"])
	assert.Equal(t, 0.9, req["top_p"])
	assert.Equal(t, 0.5, req["frequency_penalty"])
	assert.Equal(t, -0.5, req["presence_penalty"])
	assert.Equal(t, []string{"END"}, req["stop"])
}

func TestBuildRequest_ReasoningModelAdaptation(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test", Model: "o1-mini"})

	req, err := svc.BuildRequest(nil, &llmconn.Options{
		Temperature: 0.7,
		TopP:        0.9,
	}, false)

	require.NoError(t, err)
	// Reasoning 模型强制 temperature 为 1，不支持 top_p
	assert.Equal(t, 1.0, req["temperature"])
	assert.NotContains(t, req, "top_p")
}

func TestBuildRequest_ReasoningEffort(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test", Model: "o3-mini"})

	req, err := svc.BuildRequest(nil, &llmconn.Options{Reasoning: "high"}, false)

	require.NoError(t, err)
	assert.Equal(t, "high", req["reasoning_effort"])
}

func TestBuildRequest_InvalidReasoningEffort(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test"})

	_, err := svc.BuildRequest(nil, &llmconn.Options{Reasoning: "extreme"}, false)

	require.Error(t, err)
	assert.True(t, llmconn.IsInvalidRequestError(err))
}

func TestBuildRequest_Tools(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test"})

	req, err := svc.BuildRequest(nil, &llmconn.Options{
		Tools: []llmconn.ToolSchema{
			{
				Name:        "get_weather",
				Description: "Get current weather",
				InputSchema: map[string]any{"type": "object"},
			},
		},
	}, false)

	require.NoError(t, err)

	tools := req["tools"].([]map[string]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "function", tools[0]["type"])

	fn := tools[0]["function"].(map[string]any)
	assert.Equal(t, "get_weather", fn["name"])
	assert.Equal(t, "Get current weather", fn["description"])
	assert.Equal(t, map[string]any{"type": "object"}, fn["parameters"])
}

func TestBuildRequest_ResponseFormat(t *testing.T) {
	svc := newTestChatService(t, &Config{APIKey: "sk-test"})

	t.Run("json_schema", func(t *testing.T) {
		req, err := svc.BuildRequest(nil, &llmconn.Options{
			ResponseFormat: &llmconn.ResponseFormat{
				Type:   "json_schema",
				Name:   "weather",
				Schema: map[string]any{"type": "object"},
			},
		}, false)

		require.NoError(t, err)
		rf := req["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", rf["type"])
		js := rf["json_schema"].(map[string]any)
		assert.Equal(t, "weather", js["name"])
	})

	t.Run("json_object", func(t *testing.T) {
		req, err := svc.BuildRequest(nil, &llmconn.Options{
			ResponseFormat: &llmconn.ResponseFormat{Type: "json_object"},
		}, false)

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Reasoning 模型判断测试
// ═══════════════════════════════════════════════════════════════════════════

func TestIsReasoningModel(t *testing.T) {
	tests := []struct {
		model    string
		expected bool
	}{
		{"o1-mini", true},
		{"o1-preview", true},
		{"o3-mini", true},
		{"O3-Mini", true}, // 大小写不敏感
		{"gpt-5", true},
		{"deepseek-reasoner", true},
		{"deepseek-r1-distill", true},
		{"gpt-4o", false},
		{"gpt-4o-mini", false},
		{"llama-3.3-70b-versatile", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsReasoningModel(tt.model))
		})
	}
}

func TestAdaptTemperatureForModel(t *testing.T) {
	assert.Equal(t, 1.0, AdaptTemperatureForModel("o1-mini", 0.3))
	assert.Equal(t, 0.3, AdaptTemperatureForModel("gpt-4o", 0.3))
}

func TestIsValidReasoningEffort(t *testing.T) {
	for _, effort := range []string{"minimal", "low", "medium", "high", ""} {
		assert.True(t, IsValidReasoningEffort(effort), "effort %q should be valid", effort)
	}
	assert.False(t, IsValidReasoningEffort("extreme"))
}

// ═══════════════════════════════════════════════════════════════════════════
// Invoke 端到端测试
// ═══════════════════════════════════════════════════════════════════════════

func TestClient_Invoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Hello there!"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
		}`))
	}))
	defer server.Close()

	client, err := New(&Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	resp, err := client.Chat().Invoke(context.Background(), []llmconn.Message{
		llmconn.NewUserMessage("Hi"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.Message.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(12), resp.Usage.TotalTokens)
}

func TestClient_Invoke_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := New(&Config{APIKey: "sk-bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Chat().Invoke(context.Background(), []llmconn.Message{
		llmconn.NewUserMessage("Hi"),
	}, nil)

	require.Error(t, err)
	assert.True(t, llmconn.IsAuthenticationError(err))
	assert.Contains(t, err.Error(), "Incorrect API key")
}

// ═══════════════════════════════════════════════════════════════════════════
// Stream 端到端测试
// ═══════════════════════════════════════════════════════════════════════════

func TestClient_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"index":0,"delta":{"content":"Hel"}}]}

data: {"choices":[{"index":0,"delta":{"content":"lo!"}}]}

data: {"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}

data: [DONE]

`))
	}))
	defer server.Close()

	client, err := New(&Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	stream, err := client.Chat().Stream(context.Background(), []llmconn.Message{
		llmconn.NewUserMessage("Hi"),
	}, nil)
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	result := llmconn.ParseStream(stream)

	require.NoError(t, result.Err)
	assert.Equal(t, "Hello!", result.Message.Content)
	assert.Equal(t, "stop", result.FinishReason)
}
