package groq

import (
	"time"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/openai"
)

// ═══════════════════════════════════════════════════════════════════════════
// Groq 连接器
// ═══════════════════════════════════════════════════════════════════════════

// Config 客户端配置
type Config struct {
	// APIKey API 密钥（必需）
	APIKey string

	// BaseURL API 基础地址，默认 https://api.groq.com/openai/v1
	BaseURL string

	// Model 默认模型名称，默认 llama-3.3-70b-versatile
	Model string

	// Timeout 请求超时时间，默认 120 秒
	Timeout time.Duration

	// Headers 额外的请求头
	Headers map[string]string
}

// New 创建新的 Groq 连接器
//
// Groq 完全兼容 OpenAI Chat Completions / Batch / Files API，
// 本包只是换默认地址和默认模型的薄封装。
func New(config *Config) (*openai.Client, error) {
	if config == nil {
		config = &Config{}
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = llmconn.ProviderTypeGroq.DefaultBaseURL()
	}

	model := config.Model
	if model == "" {
		model = llmconn.ProviderTypeGroq.DefaultModel()
	}

	return openai.New(&openai.Config{
		APIKey:  config.APIKey,
		BaseURL: baseURL,
		Model:   model,
		Timeout: config.Timeout,
		Headers: config.Headers,
		Name:    "groq",
	})
}
