package llmconn

// ProviderType LLM Provider 类型
type ProviderType string

const (
	// ProviderTypeOpenAI OpenAI 原生 API
	ProviderTypeOpenAI ProviderType = "openai"

	// ProviderTypeGroq Groq API（OpenAI 兼容，含 Batch/File API）
	ProviderTypeGroq ProviderType = "groq"

	// ProviderTypeAnthropic Anthropic 原生 API
	ProviderTypeAnthropic ProviderType = "anthropic"

	// ProviderTypeLocalMock 本地内存实现（测试用）
	ProviderTypeLocalMock ProviderType = "localmock"
)

// String 返回字符串表示
func (t ProviderType) String() string {
	return string(t)
}

// IsOpenAICompatible 判断是否为 OpenAI 兼容协议
func (t ProviderType) IsOpenAICompatible() bool {
	switch t {
	case ProviderTypeOpenAI, ProviderTypeGroq:
		return true
	default:
		return false
	}
}

// DefaultBaseURL 返回默认 Base URL
func (t ProviderType) DefaultBaseURL() string {
	switch t {
	case ProviderTypeOpenAI:
		return "https://api.openai.com/v1"
	case ProviderTypeGroq:
		return "https://api.groq.com/openai/v1"
	case ProviderTypeAnthropic:
		return "https://api.anthropic.com/v1"
	default:
		return ""
	}
}

// DefaultModel 返回默认模型
func (t ProviderType) DefaultModel() string {
	switch t {
	case ProviderTypeOpenAI:
		return "gpt-4o-mini"
	case ProviderTypeGroq:
		return "llama-3.3-70b-versatile"
	case ProviderTypeAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderTypeLocalMock:
		return "localmock"
	default:
		return ""
	}
}

// EnvAPIKey 返回 API Key 对应的环境变量名
func (t ProviderType) EnvAPIKey() string {
	switch t {
	case ProviderTypeOpenAI:
		return "OPENAI_API_KEY"
	case ProviderTypeGroq:
		return "GROQ_API_KEY"
	case ProviderTypeAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// RequiresAPIKey 判断是否必须提供 API Key
func (t ProviderType) RequiresAPIKey() bool {
	return t != ProviderTypeLocalMock
}
