// Package provider 提供 LLM 连接器的统一工厂和动态注册表
//
// 使用方式：
//
//	conn, err := provider.New(&llmconn.Config{
//	    Type:   llmconn.ProviderTypeOpenAI,
//	    APIKey: "sk-xxx",
//	    Model:  "gpt-4o-mini",
//	})
//
//	// 本地 Mock（无需配置）
//	conn := provider.LocalMock()
//
// 第三方提供者可通过 [Register] 注册后用同一入口创建。
package provider

import (
	"sort"
	"sync"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/anthropic"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/groq"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/localmock"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/openai"
)

// ═══════════════════════════════════════════════════════════════════════════
// 注册表
// ═══════════════════════════════════════════════════════════════════════════

// Factory 连接器工厂函数
type Factory func(cfg *llmconn.Config) (llmconn.Connector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[llmconn.ProviderType]Factory)
)

// Register 注册连接器工厂
//
// 同名注册覆盖旧工厂。通常在包 init 中调用：
//
//	func init() {
//	    provider.Register("myprovider", newMyProvider)
//	}
func Register(name llmconn.ProviderType, factory Factory) {
	if factory == nil {
		return
	}
	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
}

// Available 返回所有已注册的提供者名称（字典序）
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name.String())
	}
	sort.Strings(names)
	return names
}

// lookup 查找工厂
func lookup(name llmconn.ProviderType) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	return factory, ok
}

// ═══════════════════════════════════════════════════════════════════════════
// 工厂函数
// ═══════════════════════════════════════════════════════════════════════════

// New 创建连接器
//
// 按 cfg.Type 在注册表中查找工厂（默认 OpenAI）。
// APIKey 为空时从对应环境变量读取。
// 未注册的类型返回 ProviderNotSupportedError。
func New(cfg *llmconn.Config) (llmconn.Connector, error) {
	if cfg == nil {
		return nil, llmconn.NewConfigError("config is required", nil)
	}

	providerType := cfg.Type
	if providerType == "" {
		providerType = llmconn.ProviderTypeOpenAI
	}

	// 先查注册表：未注册的类型报查找错误，不做任何配置校验
	factory, ok := lookup(providerType)
	if !ok {
		return nil, llmconn.NewProviderNotSupportedError(providerType.String(), Available())
	}

	// APIKey 兜底到环境变量
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = providerType.GetEnvAPIKey()
	}
	if apiKey == "" && providerType.RequiresAPIKey() {
		return nil, llmconn.NewConfigError("API key is required", nil)
	}

	// 传给工厂的配置携带解析后的 Type 和 APIKey
	resolved := *cfg
	resolved.Type = providerType
	resolved.APIKey = apiKey

	return factory(&resolved)
}

// Must 创建连接器，失败时 panic
func Must(cfg *llmconn.Config) llmconn.Connector {
	conn, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return conn
}

// Default 使用默认配置创建连接器
//
// 不指定类型时默认使用 OpenAI，从对应环境变量读取 APIKey。
func Default(types ...llmconn.ProviderType) (llmconn.Connector, error) {
	return New(llmconn.DefaultConfig(types...))
}

// MustDefault 使用默认配置创建连接器，失败时 panic
func MustDefault(types ...llmconn.ProviderType) llmconn.Connector {
	conn, err := Default(types...)
	if err != nil {
		panic(err)
	}
	return conn
}

// LocalMock 创建本地 Mock 连接器（用于测试）
func LocalMock(opts ...localmock.Option) *localmock.Client {
	return localmock.New(opts...)
}

// ═══════════════════════════════════════════════════════════════════════════
// 内建提供者
// ═══════════════════════════════════════════════════════════════════════════

func init() {
	Register(llmconn.ProviderTypeOpenAI, newOpenAI)
	Register(llmconn.ProviderTypeGroq, newGroq)
	Register(llmconn.ProviderTypeAnthropic, newAnthropic)
	Register(llmconn.ProviderTypeLocalMock, newLocalMock)
}

// newOpenAI 创建 OpenAI 连接器
func newOpenAI(cfg *llmconn.Config) (llmconn.Connector, error) {
	return openai.New(&openai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
	})
}

// newGroq 创建 Groq 连接器
func newGroq(cfg *llmconn.Config) (llmconn.Connector, error) {
	return groq.New(&groq.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
	})
}

// newAnthropic 创建 Anthropic 连接器
func newAnthropic(cfg *llmconn.Config) (llmconn.Connector, error) {
	return anthropic.New(&anthropic.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
	})
}

// newLocalMock 创建本地 Mock 连接器
//
// cfg.Extra["scenario_file"] 可指定场景配置文件路径。
func newLocalMock(cfg *llmconn.Config) (llmconn.Connector, error) {
	var opts []localmock.Option
	if path := cfg.ExtraString("scenario_file"); path != "" {
		opts = append(opts, localmock.WithConfigFile(path))
	}
	return localmock.New(opts...), nil
}
