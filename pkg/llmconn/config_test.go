package llmconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════════════════
// ProviderType 测试
// ═══════════════════════════════════════════════════════════════════════════

func TestProviderType_Defaults(t *testing.T) {
	tests := []struct {
		providerType ProviderType
		baseURL      string
		model        string
		envKey       string
	}{
		{ProviderTypeOpenAI, "https://api.openai.com/v1", "gpt-4o-mini", "OPENAI_API_KEY"},
		{ProviderTypeGroq, "https://api.groq.com/openai/v1", "llama-3.3-70b-versatile", "GROQ_API_KEY"},
		{ProviderTypeAnthropic, "https://api.anthropic.com/v1", "claude-3-5-haiku-latest", "ANTHROPIC_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.providerType.String(), func(t *testing.T) {
			assert.Equal(t, tt.baseURL, tt.providerType.DefaultBaseURL())
			assert.Equal(t, tt.model, tt.providerType.DefaultModel())
			assert.Equal(t, tt.envKey, tt.providerType.EnvAPIKey())
			assert.True(t, tt.providerType.RequiresAPIKey())
		})
	}
}

func TestProviderType_LocalMock(t *testing.T) {
	assert.False(t, ProviderTypeLocalMock.RequiresAPIKey())
	assert.Empty(t, ProviderTypeLocalMock.DefaultBaseURL())
	assert.Equal(t, "localmock", ProviderTypeLocalMock.DefaultModel())
	assert.Empty(t, ProviderTypeLocalMock.EnvAPIKey())
}

func TestProviderType_IsOpenAICompatible(t *testing.T) {
	assert.True(t, ProviderTypeOpenAI.IsOpenAICompatible())
	assert.True(t, ProviderTypeGroq.IsOpenAICompatible())
	assert.False(t, ProviderTypeAnthropic.IsOpenAICompatible())
	assert.False(t, ProviderTypeLocalMock.IsOpenAICompatible())
}

// ═══════════════════════════════════════════════════════════════════════════
// 环境变量探测测试
// ═══════════════════════════════════════════════════════════════════════════

func TestGetEnvAPIKey(t *testing.T) {
	t.Run("Provider 特定变量优先", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-specific")
		t.Setenv("LLM_API_KEY", "sk-fallback")

		assert.Equal(t, "sk-specific", ProviderTypeOpenAI.GetEnvAPIKey())
	})

	t.Run("回退到通用变量", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("LLM_API_KEY", "sk-fallback")

		assert.Equal(t, "sk-fallback", ProviderTypeOpenAI.GetEnvAPIKey())
	})

	t.Run("未设置返回空", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("LLM_API_KEY", "")

		assert.Empty(t, ProviderTypeAnthropic.GetEnvAPIKey())
	})
}

func TestGetEnvBaseURL(t *testing.T) {
	t.Run("LLM_BASE_URL 优先", func(t *testing.T) {
		t.Setenv("LLM_BASE_URL", "https://proxy.example.com/v1")
		t.Setenv("OPENAI_BASE_URL", "https://other.example.com/v1")

		assert.Equal(t, "https://proxy.example.com/v1", ProviderTypeOpenAI.GetEnvBaseURL())
	})

	t.Run("OPENAI_BASE_URL 仅对兼容协议生效", func(t *testing.T) {
		t.Setenv("LLM_BASE_URL", "")
		t.Setenv("OPENAI_BASE_URL", "https://compat.example.com/v1")

		assert.Equal(t, "https://compat.example.com/v1", ProviderTypeGroq.GetEnvBaseURL())
		assert.Empty(t, ProviderTypeAnthropic.GetEnvBaseURL())
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Config 测试
// ═══════════════════════════════════════════════════════════════════════════

func TestDefaultConfig(t *testing.T) {
	t.Run("默认 OpenAI", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg := DefaultConfig()

		require.NotNil(t, cfg)
		assert.Equal(t, ProviderTypeOpenAI, cfg.Type)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
		assert.Equal(t, 120*time.Second, cfg.Timeout)
	})

	t.Run("指定类型", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

		cfg := DefaultConfig(ProviderTypeAnthropic)

		assert.Equal(t, ProviderTypeAnthropic, cfg.Type)
		assert.Equal(t, "sk-ant", cfg.APIKey)
		assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model)
	})
}

func TestConfig_ExtraString(t *testing.T) {
	cfg := &Config{
		Extra: map[string]any{
			"organization": "org-123",
			"retries":      3,
		},
	}

	assert.Equal(t, "org-123", cfg.ExtraString("organization"))
	assert.Empty(t, cfg.ExtraString("retries"), "non-string values are ignored")
	assert.Empty(t, cfg.ExtraString("missing"))

	var nilExtra Config
	assert.Empty(t, nilExtra.ExtraString("anything"))
}
