package openai

import (
	"maps"
	"time"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
	protocol "github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/protocol/openai"
)

// ═══════════════════════════════════════════════════════════════════════════
// 配置
// ═══════════════════════════════════════════════════════════════════════════

// Config 客户端配置
type Config struct {
	// APIKey API 密钥（必需）
	APIKey string

	// BaseURL API 基础地址，默认 https://api.openai.com/v1
	BaseURL string

	// Model 默认模型名称
	Model string

	// Timeout 请求超时时间，默认 120 秒
	Timeout time.Duration

	// Organization OpenAI 组织 ID（可选）
	Organization string

	// Headers 额外的请求头
	Headers map[string]string

	// Name 连接器名称，用于错误标注，默认 "openai"。
	// Groq 等 OpenAI 兼容提供者复用本客户端时覆盖此字段。
	Name string
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
		baseURL = llmconn.ProviderTypeOpenAI.DefaultBaseURL()
	}

	model := c.Model
	if model == "" {
		model = llmconn.ProviderTypeOpenAI.DefaultModel()
	}

	return baseURL, model, core.GetDefaultTimeout(c.Timeout)
}

// BuildHeaders 实现 core.ProviderConfig 接口
//
// OpenAI 使用 Bearer 认证。
func (c *Config) BuildHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"Content-Type":  "application/json",
	}
	if c.Organization != "" {
		headers["OpenAI-Organization"] = c.Organization
	}
	maps.Copy(headers, c.Headers)
	return headers
}

// ProviderName 实现 core.ProviderConfig 接口
func (c *Config) ProviderName() string {
	if c.Name != "" {
		return c.Name
	}
	return "openai"
}

// GetModel 获取配置的模型名称
func (c *Config) GetModel() string {
	_, model, _ := c.GetDefaults()
	return model
}

// ═══════════════════════════════════════════════════════════════════════════
// 客户端
// ═══════════════════════════════════════════════════════════════════════════

// Client OpenAI 兼容的 LLM 连接器
//
// 实现 [llmconn.Connector] 接口，暴露 chat/batch/file 三组操作。
// Groq 等 OpenAI 兼容提供者通过覆盖 Config.BaseURL 复用本客户端。
//
// 架构设计：
//   - 基于 core.BaseClient，协议差异由 protocol/openai 封装
//   - 子接口对象是无状态的轻量值，可安全并发使用
type Client struct {
	config *Config
	base   *core.BaseClient
}

// New 创建新的 OpenAI 连接器
//
// 参数 config 必须包含 APIKey。如果 BaseURL 为空，默认使用 OpenAI 官方地址。
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, core.NewInvalidConfigError("config")
	}

	base, err := core.NewBaseClient(config, protocol.NewAdapter(), protocol.NewEventHandler())
	if err != nil {
		return nil, err
	}
	base.SetErrorClassifier(protocol.NewErrorClassifier(config.ProviderName()))

	return &Client{
		config: config,
		base:   base,
	}, nil
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
