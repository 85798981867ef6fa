package localmock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 场景配置
// ═══════════════════════════════════════════════════════════════════════════

// ScenarioConfig 场景配置文件结构
//
// 支持 YAML / JSON / TOML 三种格式，按文件扩展名识别。
type ScenarioConfig struct {
	// DefaultResponse 默认响应（当没有指定场景时使用）
	DefaultResponse string `yaml:"default_response" json:"default_response" toml:"default_response"`

	// Scenarios 场景列表（通过 name 标识，直接指定使用）
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios" toml:"scenarios"`

	// Delay 响应延迟（如 "100ms", "1s"）
	Delay string `yaml:"delay" json:"delay" toml:"delay"`

	// SimulateError 模拟错误消息
	SimulateError string `yaml:"simulate_error" json:"simulate_error" toml:"simulate_error"`
}

// Scenario 场景（通过 name 标识，支持多轮对话）
type Scenario struct {
	// Name 场景名称（必需，用于指定场景）
	Name string `yaml:"name" json:"name" toml:"name"`

	// Turns 对话轮次列表
	Turns []Turn `yaml:"turns" json:"turns" toml:"turns"`
}

// Turn 单轮对话
type Turn struct {
	// User 用户消息（可选，用于文档说明）
	User string `yaml:"user,omitempty" json:"user,omitempty" toml:"user,omitempty"`

	// Assistant 助手响应（支持模板语法）
	Assistant string `yaml:"assistant,omitempty" json:"assistant,omitempty" toml:"assistant,omitempty"`

	// Tools 工具调用列表（可选）
	Tools []ScenarioToolCall `yaml:"tools,omitempty" json:"tools,omitempty" toml:"tools,omitempty"`
}

// ScenarioToolCall 场景中的工具调用定义
type ScenarioToolCall struct {
	// Name 工具名称
	Name string `yaml:"name" json:"name" toml:"name"`

	// Input 工具输入参数（支持模板语法）
	Input map[string]any `yaml:"input,omitempty" json:"input,omitempty" toml:"input,omitempty"`
}

// LoadScenarioFile 从文件加载场景配置
func LoadScenarioFile(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	return LoadScenarioBytes(data, ext)
}

// LoadScenarioBytes 从字节数据加载场景配置
//
// format 支持 "yaml"/"yml"/"json"/"toml"（可带前导点）。
func LoadScenarioBytes(data []byte, format string) (*ScenarioConfig, error) {
	cfg := &ScenarioConfig{}

	format = strings.TrimPrefix(strings.ToLower(format), ".")

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected yaml, yml, json, or toml)", format)
	}

	return cfg, nil
}

// WithConfigFile 从配置文件加载设置
func WithConfigFile(path string) Option {
	return func(c *Client) {
		cfg, err := LoadScenarioFile(path)
		if err != nil {
			// 将错误存储到客户端，在首次调用时返回
			c.err = fmt.Errorf("load scenario file: %w", err)
			return
		}
		applyConfig(c, cfg)
	}
}

// WithConfig 从配置对象加载设置
func WithConfig(cfg *ScenarioConfig) Option {
	return func(c *Client) {
		if cfg == nil {
			return
		}
		applyConfig(c, cfg)
	}
}

// applyConfig 应用配置到客户端
func applyConfig(c *Client, cfg *ScenarioConfig) {
	if cfg.DefaultResponse != "" {
		c.response = cfg.DefaultResponse
	}

	// 加载场景（通过 name 索引）
	if len(cfg.Scenarios) > 0 {
		c.scenarios = make(map[string]*scenarioState)
		for _, s := range cfg.Scenarios {
			if s.Name != "" {
				c.scenarios[s.Name] = &scenarioState{
					scenario: s,
					turnIdx:  0,
				}
			}
		}
	}

	if cfg.Delay != "" {
		if d, err := time.ParseDuration(cfg.Delay); err == nil {
			c.delay = d
		}
	}

	if cfg.SimulateError != "" {
		c.err = fmt.Errorf("%s", cfg.SimulateError)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 场景管理方法
// ═══════════════════════════════════════════════════════════════════════════

// UseScenario 设置当前使用的场景（通过名称）
//
// 设置后，Invoke 会使用该场景的配置返回响应，
// 每次调用自动推进到下一轮。
func (c *Client) UseScenario(name string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentScenario = name
	return c
}

// ResetScenario 重置指定场景的轮次到起始位置
func (c *Client) ResetScenario(name string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scenarios[name]; ok {
		s.turnIdx = 0
	}
	return c
}

// ScenarioNames 获取所有可用的场景名称
func (c *Client) ScenarioNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.scenarios))
	for name := range c.scenarios {
		names = append(names, name)
	}
	return names
}

// getScenarioResponse 获取场景响应（内部方法，需要在锁内调用）
func (c *Client) getScenarioResponse(messages []llmconn.Message) *llmconn.Message {
	if c.currentScenario == "" {
		return nil
	}

	s, ok := c.scenarios[c.currentScenario]
	if !ok {
		return nil
	}

	data := createTemplateData(messages)
	msg := s.buildTurnResponse(messages, data)
	s.turnIdx++

	return &msg
}

// scenarioState 场景状态
type scenarioState struct {
	scenario Scenario
	turnIdx  int // 当前轮次索引
}

// buildTurnResponse 构建当前轮次的响应消息
func (s *scenarioState) buildTurnResponse(messages []llmconn.Message, data map[string]string) llmconn.Message {
	if s.turnIdx >= len(s.scenario.Turns) {
		return llmconn.Message{
			Role:    llmconn.RoleAssistant,
			Content: "[场景已结束]",
		}
	}

	turn := s.scenario.Turns[s.turnIdx]
	msg := llmconn.Message{Role: llmconn.RoleAssistant}

	// 处理文本响应（支持模板）
	if turn.Assistant != "" {
		rendered, err := renderTemplateWithData(turn.Assistant, data)
		if err != nil {
			rendered = turn.Assistant
		}
		msg.Content = rendered
	}

	// 处理工具调用
	if len(turn.Tools) > 0 {
		var blocks []llmconn.ContentBlock
		if msg.Content != "" {
			blocks = append(blocks, &llmconn.TextBlock{Text: msg.Content})
		}
		for _, tool := range turn.Tools {
			blocks = append(blocks, &llmconn.ToolCall{
				ID:    "call_" + uuid.NewString(),
				Name:  tool.Name,
				Input: renderToolInput(tool.Input, messages),
			})
		}
		msg.ContentBlocks = blocks
		msg.Content = ""
	}

	return msg
}

// ═══════════════════════════════════════════════════════════════════════════
// 模板渲染
// ═══════════════════════════════════════════════════════════════════════════

// templateFuncs 模板函数映射
var templateFuncs = template.FuncMap{
	"env":     envFunc,
	"default": defaultFunc,
}

// envFunc 获取环境变量
func envFunc(key string, defaultVal ...string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if len(defaultVal) > 0 {
		return defaultVal[0]
	}
	return ""
}

// defaultFunc 提供默认值
func defaultFunc(defaultVal, value any) any {
	if value == nil {
		return defaultVal
	}
	if str, ok := value.(string); ok && str == "" {
		return defaultVal
	}
	return value
}

// renderToolInput 渲染工具输入参数
func renderToolInput(input map[string]any, messages []llmconn.Message) map[string]any {
	result := make(map[string]any)
	data := createTemplateData(messages)

	for key, val := range input {
		if strVal, ok := val.(string); ok {
			if rendered, err := renderTemplateWithData(strVal, data); err == nil {
				result[key] = rendered
			} else {
				result[key] = strVal
			}
		} else {
			result[key] = val
		}
	}

	return result
}

// renderTemplateWithData 使用指定数据渲染模板
func renderTemplateWithData(text string, data map[string]string) (string, error) {
	tmpl, err := template.New("param").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return text, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return text, err
	}

	return buf.String(), nil
}

// createTemplateData 创建模板数据
//
// 暴露环境变量与 LAST_USER_MESSAGE 给模板。
func createTemplateData(messages []llmconn.Message) map[string]string {
	vars := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			vars[parts[0]] = parts[1]
		}
	}

	if len(messages) > 0 {
		vars["LAST_USER_MESSAGE"] = messages[len(messages)-1].GetContent()
	}

	return vars
}
