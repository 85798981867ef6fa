package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 接口定义
// ═══════════════════════════════════════════════════════════════════════════

// ProviderConfig Provider 配置接口
//
// 每个 Provider 实现此接口来定义其特有的配置和默认值。
type ProviderConfig interface {
	// Validate 验证配置
	Validate() error

	// GetDefaults 获取默认值
	// 返回 baseURL, model, timeout
	GetDefaults() (baseURL, model string, timeout time.Duration)

	// BuildHeaders 构建请求头
	// 返回认证头和其他必要的 HTTP 头
	BuildHeaders() map[string]string

	// ProviderName 返回 Provider 名称
	// 用于错误标注和追踪
	ProviderName() string
}

// EndpointBuilder 端点构建器接口
//
// 补全端点因协议而异（OpenAI /chat/completions，Anthropic /messages）。
type EndpointBuilder interface {
	// BuildCompleteEndpoint 构建 Complete 端点
	BuildCompleteEndpoint() string

	// BuildStreamEndpoint 构建 Stream 端点
	BuildStreamEndpoint() string
}

// RequestBuilder 请求构建器接口
//
// 每个 Provider 实现此接口来定义协议特定的请求体构建逻辑。
type RequestBuilder interface {
	// BuildRequest 构建请求体
	// 返回 API 特定格式的请求体 map
	BuildRequest(messages []llmconn.Message, opts *llmconn.Options, stream bool) (map[string]any, error)
}

// ErrorClassifier 错误分类器接口
//
// 每个协议实现此接口，将 HTTP 错误响应映射为统一异常分类。
// 返回 nil 时回退到通用状态码分类。
type ErrorClassifier interface {
	// Classify 将错误响应映射为类型化错误
	Classify(statusCode int, header http.Header, body string) error
}

// ═══════════════════════════════════════════════════════════════════════════
// BaseClient 基础客户端
// ═══════════════════════════════════════════════════════════════════════════

// BaseClient 基础客户端
//
// 封装所有 Provider 共用的 HTTP 通信逻辑：对话补全（同步/流式）、
// 通用 JSON 调用、multipart 上传、原始下载，以及统一的错误分类。
// Provider 的 chat/batch/file 服务都建立在 BaseClient 之上。
//
// 架构设计：
//   - 模板方法模式：定义请求流程骨架，协议差异委托给接口
//   - 依赖倒置：依赖抽象接口（ProviderConfig、RequestBuilder、ErrorClassifier）
type BaseClient struct {
	config          ProviderConfig
	resty           *resty.Client
	transformer     *Transformer
	sseParser       *SSEParser
	endpointBuilder EndpointBuilder
	classifier      ErrorClassifier
}

// NewBaseClient 创建基础客户端
//
// 参数：
//   - config: Provider 特定配置，实现 ProviderConfig 接口
//   - adapter: 协议适配器，处理消息格式转换
//   - eventHandler: SSE 事件处理器，处理流式响应
//
// 配置验证失败时返回 ConfigError。
func NewBaseClient(
	config ProviderConfig,
	adapter ProtocolAdapter,
	eventHandler EventHandler,
) (*BaseClient, error) {
	if err := config.Validate(); err != nil {
		return nil, llmconn.NewConfigError("config validation failed", err)
	}

	baseURL, _, timeout := config.GetDefaults()
	headers := config.BuildHeaders()

	r := resty.New()
	r.SetBaseURL(baseURL)
	r.SetTimeout(timeout)
	for k, v := range headers {
		r.SetHeader(k, v)
	}

	return &BaseClient{
		config:      config,
		resty:       r,
		transformer: NewTransformer(adapter),
		sseParser:   NewSSEParser(eventHandler),
	}, nil
}

// SetEndpointBuilder 设置端点构建器
func (c *BaseClient) SetEndpointBuilder(builder EndpointBuilder) {
	c.endpointBuilder = builder
}

// SetErrorClassifier 设置协议特定的错误分类器
func (c *BaseClient) SetErrorClassifier(classifier ErrorClassifier) {
	c.classifier = classifier
}

// Transformer 返回消息转换器
func (c *BaseClient) Transformer() *Transformer {
	return c.transformer
}

// ═══════════════════════════════════════════════════════════════════════════
// 对话补全
// ═══════════════════════════════════════════════════════════════════════════

// Complete 同步补全（通用实现）
//
// 通用流程：
//  1. 构建 API 请求体（委托给 RequestBuilder）
//  2. 发送 HTTP POST 请求
//  3. 错误分类（委托给 ErrorClassifier）
//  4. 解析响应（使用 Transformer）
func (c *BaseClient) Complete(
	ctx context.Context,
	messages []llmconn.Message,
	opts *llmconn.Options,
	requestBuilder RequestBuilder,
) (*llmconn.Response, error) {
	body, err := requestBuilder.BuildRequest(messages, opts, false)
	if err != nil {
		return nil, llmconn.NewRequestError("build", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, llmconn.NewRequestError("marshal", err)
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(bodyBytes).
		Post(c.getCompleteEndpoint())
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}

	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}

	apiResp, err := decodeJSONBody(resp)
	if err != nil {
		return nil, err
	}

	msg, finishReason, usage := c.transformer.ParseAPIResponse(apiResp)

	// 提取实际使用的模型（响应优先，配置兜底）
	model := c.getModelFromConfig()
	if respModel, ok := apiResp["model"].(string); ok && respModel != "" {
		model = respModel
	}

	return &llmconn.Response{
		Message:      msg,
		FinishReason: finishReason,
		Model:        model,
		Usage:        usage,
	}, nil
}

// Stream 流式补全（通用实现）
//
// 发送请求后不解析响应体，启动 SSE 解析 goroutine，
// 返回包装了底层连接的 [llmconn.Stream] 游标。
// 提前放弃迭代时 Stream.Close 关闭连接，解析 goroutine 随之退出。
func (c *BaseClient) Stream(
	ctx context.Context,
	messages []llmconn.Message,
	opts *llmconn.Options,
	requestBuilder RequestBuilder,
) (*llmconn.Stream, error) {
	body, err := requestBuilder.BuildRequest(messages, opts, true)
	if err != nil {
		return nil, llmconn.NewRequestError("build", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, llmconn.NewRequestError("marshal", err)
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(bodyBytes).
		SetDoNotParseResponse(true).
		Post(c.getStreamEndpoint())
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}

	if resp.StatusCode() >= 400 {
		classified := c.classifyResponse(resp)
		_ = resp.RawBody().Close()
		return nil, classified
	}

	events := make(chan *llmconn.Event, 10)
	go c.sseParser.Parse(resp.RawBody(), events)

	return llmconn.NewStream(events, resp.RawBody()), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 通用 REST 调用（batch/file 服务使用）
// ═══════════════════════════════════════════════════════════════════════════

// GetJSON 发送 GET 请求并解析 JSON 响应
func (c *BaseClient) GetJSON(ctx context.Context, path string, query map[string]string, headers map[string]string) (map[string]any, error) {
	req := c.resty.R().
		SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}
	return decodeJSONBody(resp)
}

// PostJSON 发送 JSON POST 请求并解析响应
func (c *BaseClient) PostJSON(ctx context.Context, path string, body any, headers map[string]string) (map[string]any, error) {
	req := c.resty.R().
		SetContext(ctx)
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, llmconn.NewRequestError("marshal", err)
		}
		req.SetBody(bodyBytes)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}
	return decodeJSONBody(resp)
}

// DeleteJSON 发送 DELETE 请求并解析 JSON 响应
func (c *BaseClient) DeleteJSON(ctx context.Context, path string, headers map[string]string) (map[string]any, error) {
	req := c.resty.R().
		SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Delete(path)
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}
	return decodeJSONBody(resp)
}

// Download 发送 GET 请求并返回原始响应字节
func (c *BaseClient) Download(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	req := c.resty.R().
		SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}
	return resp.Body(), nil
}

// UploadMultipart 发送 multipart/form-data 上传请求
//
// content 作为 field 字段的文件内容，fields 为其他表单字段。
func (c *BaseClient) UploadMultipart(
	ctx context.Context,
	path string,
	field, filename string,
	content []byte,
	fields map[string]string,
	headers map[string]string,
) (map[string]any, error) {
	req := c.resty.R().
		SetContext(ctx).
		SetFileReader(field, filename, bytes.NewReader(content))
	if len(fields) > 0 {
		req.SetFormData(fields)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, llmconn.NewHTTPError("request failed", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, c.classifyResponse(resp)
	}
	return decodeJSONBody(resp)
}

// decodeJSONBody 解析响应体为 map
//
// 不依赖响应的 Content-Type 头：部分网关返回 JSON 时未标注
// application/json，resty 的自动反序列化不会触发。
// 空响应体返回 nil map；非 JSON 响应体返回 ResponseError。
func decodeJSONBody(resp *resty.Response) (map[string]any, error) {
	body := resp.Body()
	if len(body) == 0 {
		return nil, nil
	}

	var apiResp map[string]any
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, llmconn.NewResponseError("body", err)
	}
	return apiResp, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 错误分类
// ═══════════════════════════════════════════════════════════════════════════

// classifyResponse 将 HTTP 错误响应映射为类型化错误
//
// 优先使用协议特定的分类器，其返回 nil 时回退到通用状态码分类。
func (c *BaseClient) classifyResponse(resp *resty.Response) error {
	statusCode := resp.StatusCode()
	body := resp.String()

	if c.classifier != nil {
		if err := c.classifier.Classify(statusCode, resp.Header(), body); err != nil {
			return err
		}
	}

	return ClassifyByStatus(statusCode, resp.Header(), body, c.config.ProviderName(), resp.Header().Get("X-Request-ID"))
}

// ClassifyByStatus 通用的状态码分类
//
// 协议分类器无法细分时的兜底映射：
//   - 401/403 → AuthenticationError
//   - 404     → NotFoundError
//   - 429     → RateLimitError（解析 Retry-After 头）
//   - 其他    → APIError
func ClassifyByStatus(statusCode int, header http.Header, body, provider, requestID string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmconn.NewAuthenticationError(statusCode, "")
	case http.StatusNotFound:
		return llmconn.NewNotFoundError("", "")
	case http.StatusTooManyRequests:
		return llmconn.NewRateLimitError("", ParseRetryAfter(header))
	default:
		apiErr := llmconn.NewAPIError(statusCode, body).WithProvider(provider)
		if requestID != "" {
			apiErr = apiErr.WithRequestID(requestID)
		}
		return apiErr
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助方法
// ═══════════════════════════════════════════════════════════════════════════

// getCompleteEndpoint 获取 Complete 端点
func (c *BaseClient) getCompleteEndpoint() string {
	if c.endpointBuilder != nil {
		return c.endpointBuilder.BuildCompleteEndpoint()
	}
	return "/chat/completions" // 默认端点
}

// getStreamEndpoint 获取 Stream 端点
func (c *BaseClient) getStreamEndpoint() string {
	if c.endpointBuilder != nil {
		return c.endpointBuilder.BuildStreamEndpoint()
	}
	return "/chat/completions" // 默认端点
}

// getModelFromConfig 从配置获取模型名称
func (c *BaseClient) getModelFromConfig() string {
	if cfg, ok := c.config.(interface{ GetModel() string }); ok {
		return cfg.GetModel()
	}
	return ""
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// GetDefaultTimeout 获取默认超时时间的辅助函数
//
// 如果 timeout 为 0，返回默认的 120 秒。
func GetDefaultTimeout(timeout time.Duration) time.Duration {
	if timeout == 0 {
		return 120 * time.Second
	}
	return timeout
}

// NewInvalidConfigError 创建无效配置错误
func NewInvalidConfigError(field string) error {
	return llmconn.NewConfigError(field+" is required", nil)
}

// NewMissingAPIKeyError 创建缺少 API Key 错误
func NewMissingAPIKeyError() error {
	return llmconn.NewConfigError("API key is required", nil)
}
