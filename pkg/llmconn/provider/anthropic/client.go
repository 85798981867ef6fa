package anthropic

import (
	"maps"
	"time"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
	protocol "github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/protocol/anthropic"
)

// ═══════════════════════════════════════════════════════════════════════════
// 配置
// ═══════════════════════════════════════════════════════════════════════════

// Config 客户端配置
type Config struct {
	// APIKey API 密钥（必需）
	APIKey string

	// BaseURL API 基础地址，默认 https://api.anthropic.com/v1
	BaseURL string

	// Model 默认模型名称，默认 claude-3-5-haiku-latest
	Model string

	// Timeout 请求超时时间，默认 120 秒
	Timeout time.Duration

	// Headers 额外的请求头
	Headers map[string]string

	// AnthropicVersion API 版本，默认 2023-06-01
	AnthropicVersion string
}

// Validate 实现 core.ProviderConfig 接口
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return core.NewMissingAPIKeyError()
	}
	return nil
}

// GetDefaults 实现 core.ProviderConfig 接口
func (c *Config) GetDefaults() (string, string, time.Duration) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = llmconn.ProviderTypeAnthropic.DefaultBaseURL()
	}

	model := c.Model
	if model == "" {
		model = llmconn.ProviderTypeAnthropic.DefaultModel()
	}

	return baseURL, model, core.GetDefaultTimeout(c.Timeout)
}

// BuildHeaders 实现 core.ProviderConfig 接口
//
// Anthropic 使用 X-Api-Key 而不是 Authorization。
func (c *Config) BuildHeaders() map[string]string {
	version := c.AnthropicVersion
	if version == "" {
		version = "2023-06-01"
	}

	headers := map[string]string{
		"X-Api-Key":         c.APIKey,
		"anthropic-version": version,
		"Content-Type":      "application/json",
	}
	maps.Copy(headers, c.Headers)
	return headers
}

// ProviderName 实现 core.ProviderConfig 接口
func (c *Config) ProviderName() string {
	return "anthropic"
}

// GetModel 获取配置的模型名称
func (c *Config) GetModel() string {
	_, model, _ := c.GetDefaults()
	return model
}

// ═══════════════════════════════════════════════════════════════════════════
// 客户端
// ═══════════════════════════════════════════════════════════════════════════

// Client Anthropic Claude API 连接器
//
// 实现 [llmconn.Connector] 接口，暴露 chat/batch/file 三组操作。
//
// 架构设计：
//   - 基于 core.BaseClient，协议差异由 protocol/anthropic 封装
//   - 批处理使用 Message Batches API（内联请求，不经过文件）
//   - 文件接口使用 beta Files API（需要 anthropic-beta 头）
type Client struct {
	config *Config
	base   *core.BaseClient
}

// New 创建新的 Anthropic 连接器
//
// 参数 config 必须包含 APIKey。
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, core.NewInvalidConfigError("config")
	}

	base, err := core.NewBaseClient(config, protocol.NewAdapter(), protocol.NewEventHandler())
	if err != nil {
		return nil, err
	}
	base.SetEndpointBuilder(&endpointBuilder{})
	base.SetErrorClassifier(protocol.NewErrorClassifier())

	return &Client{
		config: config,
		base:   base,
	}, nil
}

// endpointBuilder Anthropic 端点构建器
//
// Anthropic 的补全端点是 /messages（非 /chat/completions）。
type endpointBuilder struct{}

func (b *endpointBuilder) BuildCompleteEndpoint() string {
	return "/messages"
}

func (b *endpointBuilder) BuildStreamEndpoint() string {
	return "/messages"
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
//
// 当前实现为空操作，HTTP 客户端无需显式关闭。
func (c *Client) Close() error {
	return nil
}

// 确保 Client 实现了 Connector 接口
var _ llmconn.Connector = (*Client)(nil)
