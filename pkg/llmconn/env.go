package llmconn

import "os"

// ═══════════════════════════════════════════════════════════════════════════
// 环境变量探测
// ═══════════════════════════════════════════════════════════════════════════

// 通用回退变量，按优先级在 Provider 特定变量之后检查。
var fallbackAPIKeyEnvs = []string{
	"LLM_API_KEY",
}

// GetEnvAPIKey 从环境变量读取 API Key
//
// 优先读取 Provider 特定变量（如 OPENAI_API_KEY），
// 未设置时回退到 LLM_API_KEY。
func (t ProviderType) GetEnvAPIKey() string {
	if name := t.EnvAPIKey(); name != "" {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	for _, name := range fallbackAPIKeyEnvs {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// GetEnvBaseURL 从环境变量读取 Base URL
//
// 检查顺序：LLM_BASE_URL、OPENAI_BASE_URL（仅 OpenAI 兼容类型）。
func (t ProviderType) GetEnvBaseURL() string {
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		return v
	}
	if t.IsOpenAICompatible() {
		if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
			return v
		}
	}
	return ""
}
