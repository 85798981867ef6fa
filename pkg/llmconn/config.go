package llmconn

import (
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Connector 配置
// ═══════════════════════════════════════════════════════════════════════════

// Config Connector 创建配置
//
// 用于通过统一工厂创建不同类型的 Connector。
//
// 基本用法：
//
//	cfg := &llmconn.Config{
//	    Type:   llmconn.ProviderTypeOpenAI,
//	    APIKey: "sk-xxx",
//	    Model:  "gpt-4o-mini",
//	}
//
// APIKey 为空时工厂会回退到对应的环境变量
// （OPENAI_API_KEY / GROQ_API_KEY / ANTHROPIC_API_KEY）。
type Config struct {
	// Provider 类型（默认 OpenAI）
	Type ProviderType `koanf:"type"`

	// APIKey（localmock 除外，其他 Provider 必需；为空时读环境变量）
	APIKey string `koanf:"api-key"`

	// 可选字段（有默认值）
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base-url"`

	// 网络配置
	Timeout time.Duration `koanf:"timeout"`

	// 额外请求头
	Headers map[string]string `koanf:"headers"`

	// 扩展配置（Provider 特定，如 organization、anthropic-version）
	Extra map[string]any `koanf:"extra"`
}

// DefaultConfig 返回默认的 Connector 配置
//
// 不指定类型时默认使用 OpenAI，APIKey 从对应环境变量读取。
func DefaultConfig(types ...ProviderType) *Config {
	t := ProviderTypeOpenAI
	if len(types) > 0 {
		t = types[0]
	}
	return &Config{
		Type:    t,
		APIKey:  t.GetEnvAPIKey(),
		BaseURL: t.DefaultBaseURL(),
		Model:   t.DefaultModel(),
		Timeout: 120 * time.Second,
	}
}

// ExtraString 读取 Extra 中的字符串配置
func (c *Config) ExtraString(key string) string {
	if c.Extra == nil {
		return ""
	}
	if v, ok := c.Extra[key].(string); ok {
		return v
	}
	return ""
}
