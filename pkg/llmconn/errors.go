package llmconn

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 错误类型
// ═══════════════════════════════════════════════════════════════════════════

// ErrorType 错误类型
type ErrorType string

const (
	// ErrTypeConfig 配置错误
	ErrTypeConfig ErrorType = "config_error"

	// ErrTypeRequest 请求错误（序列化、构建等）
	ErrTypeRequest ErrorType = "request_error"

	// ErrTypeHTTP HTTP 层错误（网络、超时等）
	ErrTypeHTTP ErrorType = "http_error"

	// ErrTypeAPI API 业务错误（未细分的 4xx, 5xx）
	ErrTypeAPI ErrorType = "api_error"

	// ErrTypeResponse 响应解析错误
	ErrTypeResponse ErrorType = "response_error"

	// ErrTypeStream 流式错误
	ErrTypeStream ErrorType = "stream_error"

	// ErrTypeAuthentication 认证失败（401/403）
	ErrTypeAuthentication ErrorType = "authentication_error"

	// ErrTypeRateLimit 限流（429）
	ErrTypeRateLimit ErrorType = "rate_limit_error"

	// ErrTypeInvalidRequest 请求参数无效（400/422）
	ErrTypeInvalidRequest ErrorType = "invalid_request_error"

	// ErrTypeContextLength 上下文长度超限
	ErrTypeContextLength ErrorType = "context_length_exceeded"

	// ErrTypeContentFilter 内容被安全过滤拦截
	ErrTypeContentFilter ErrorType = "content_filter_error"

	// ErrTypeNotFound 资源不存在（404）
	ErrTypeNotFound ErrorType = "not_found_error"

	// ErrTypeBatch 批处理错误（含状态错误）
	ErrTypeBatch ErrorType = "batch_error"

	// ErrTypeFile 文件操作错误
	ErrTypeFile ErrorType = "file_error"

	// ErrTypeProvider Provider 未注册
	ErrTypeProvider ErrorType = "provider_not_supported"
)

// ═══════════════════════════════════════════════════════════════════════════
// 基础错误
// ═══════════════════════════════════════════════════════════════════════════

// BaseError 基础错误实现
type BaseError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *BaseError) Unwrap() error {
	return e.Err
}

// ═══════════════════════════════════════════════════════════════════════════
// 配置与请求错误
// ═══════════════════════════════════════════════════════════════════════════

// ConfigError 配置错误
type ConfigError struct {
	*BaseError
}

// NewConfigError 创建配置错误
func NewConfigError(message string, err error) *ConfigError {
	return &ConfigError{
		BaseError: &BaseError{
			Type:    ErrTypeConfig,
			Message: message,
			Err:     err,
		},
	}
}

// RequestError 请求错误
type RequestError struct {
	*BaseError

	Stage string // "marshal", "build", etc.
}

// NewRequestError 创建请求错误
func NewRequestError(stage string, err error) *RequestError {
	return &RequestError{
		BaseError: &BaseError{
			Type:    ErrTypeRequest,
			Message: fmt.Sprintf("failed to %s request", stage),
			Err:     err,
		},
		Stage: stage,
	}
}

// HTTPError HTTP 层错误
type HTTPError struct {
	*BaseError
}

// NewHTTPError 创建 HTTP 错误
func NewHTTPError(message string, err error) *HTTPError {
	return &HTTPError{
		BaseError: &BaseError{
			Type:    ErrTypeHTTP,
			Message: message,
			Err:     err,
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// API 错误
// ═══════════════════════════════════════════════════════════════════════════

// APIError API 业务错误
//
// 未被细分到具体类别（认证、限流等）的 4xx/5xx 都落在这里。
type APIError struct {
	*BaseError

	StatusCode int
	Response   string
	Provider   string
	RequestID  string
	ErrorCode  string // Provider 特定的错误代码
}

// NewAPIError 创建 API 错误
func NewAPIError(statusCode int, response string) *APIError {
	return &APIError{
		BaseError: &BaseError{
			Type:    ErrTypeAPI,
			Message: fmt.Sprintf("API returned error status %d", statusCode),
		},
		StatusCode: statusCode,
		Response:   response,
	}
}

// WithProvider 设置 Provider 名称
func (e *APIError) WithProvider(provider string) *APIError {
	e.Provider = provider
	return e
}

// WithRequestID 设置请求 ID
func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

// WithErrorCode 设置错误代码
func (e *APIError) WithErrorCode(code string) *APIError {
	e.ErrorCode = code
	return e
}

func (e *APIError) Error() string {
	base := e.BaseError.Error()
	if e.RequestID != "" {
		return fmt.Sprintf("%s (request_id: %s)", base, e.RequestID)
	}
	return base
}

// IsRetryable 检查错误是否可重试
func (e *APIError) IsRetryable() bool {
	// 429 (Rate Limit), 500, 502, 503, 504 可重试
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500 && e.StatusCode <= 504
}

// ═══════════════════════════════════════════════════════════════════════════
// 统一异常分类（Provider 错误在适配器边界映射到这些类型）
// ═══════════════════════════════════════════════════════════════════════════

// AuthenticationError 认证失败
//
// API Key 无效、缺失或权限不足。不可重试。
type AuthenticationError struct {
	*BaseError

	StatusCode int
}

// NewAuthenticationError 创建认证错误
func NewAuthenticationError(statusCode int, message string) *AuthenticationError {
	if message == "" {
		message = "authentication failed"
	}
	return &AuthenticationError{
		BaseError: &BaseError{
			Type:    ErrTypeAuthentication,
			Message: message,
		},
		StatusCode: statusCode,
	}
}

// RateLimitError 限流错误
//
// RetryAfter 为提供者建议的等待时长（可能为 0，表示未提供）。
// 本库不做自动重试，退避由调用方读取 RetryAfter 后自行决定。
type RateLimitError struct {
	*BaseError

	RetryAfter time.Duration
}

// NewRateLimitError 创建限流错误
func NewRateLimitError(message string, retryAfter time.Duration) *RateLimitError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &RateLimitError{
		BaseError: &BaseError{
			Type:    ErrTypeRateLimit,
			Message: message,
		},
		RetryAfter: retryAfter,
	}
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.BaseError.Error(), e.RetryAfter)
	}
	return e.BaseError.Error()
}

// InvalidRequestError 请求参数无效
type InvalidRequestError struct {
	*BaseError

	StatusCode int
	Param      string // 出错的参数名（如果提供者返回）
}

// NewInvalidRequestError 创建无效请求错误
func NewInvalidRequestError(statusCode int, message string) *InvalidRequestError {
	if message == "" {
		message = "invalid request"
	}
	return &InvalidRequestError{
		BaseError: &BaseError{
			Type:    ErrTypeInvalidRequest,
			Message: message,
		},
		StatusCode: statusCode,
	}
}

// ContextLengthExceededError 上下文长度超限
//
// 输入超出模型上下文窗口。缩短输入前重试无意义。
type ContextLengthExceededError struct {
	*BaseError
}

// NewContextLengthExceededError 创建上下文超限错误
func NewContextLengthExceededError(message string) *ContextLengthExceededError {
	if message == "" {
		message = "input exceeds model context length"
	}
	return &ContextLengthExceededError{
		BaseError: &BaseError{
			Type:    ErrTypeContextLength,
			Message: message,
		},
	}
}

// ContentFilterError 内容被安全过滤拦截
type ContentFilterError struct {
	*BaseError
}

// NewContentFilterError 创建内容过滤错误
func NewContentFilterError(message string) *ContentFilterError {
	if message == "" {
		message = "content blocked by safety filter"
	}
	return &ContentFilterError{
		BaseError: &BaseError{
			Type:    ErrTypeContentFilter,
			Message: message,
		},
	}
}

// NotFoundError 资源不存在
type NotFoundError struct {
	*BaseError

	Resource string // 资源描述（如文件 ID、批处理 ID）
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(resource, message string) *NotFoundError {
	if message == "" {
		message = "resource not found"
		if resource != "" {
			message = fmt.Sprintf("resource not found: %s", resource)
		}
	}
	return &NotFoundError{
		BaseError: &BaseError{
			Type:    ErrTypeNotFound,
			Message: message,
		},
		Resource: resource,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 批处理与文件错误
// ═══════════════════════════════════════════════════════════════════════════

// BatchError 批处理错误
//
// 包括状态错误：在非 completed 状态下调用 Result。
type BatchError struct {
	*BaseError
}

// NewBatchError 创建批处理错误
func NewBatchError(message string, err error) *BatchError {
	return &BatchError{
		BaseError: &BaseError{
			Type:    ErrTypeBatch,
			Message: message,
			Err:     err,
		},
	}
}

// FileError 文件操作错误
type FileError struct {
	*BaseError
}

// NewFileError 创建文件错误
func NewFileError(message string, err error) *FileError {
	return &FileError{
		BaseError: &BaseError{
			Type:    ErrTypeFile,
			Message: message,
			Err:     err,
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 工厂错误
// ═══════════════════════════════════════════════════════════════════════════

// ProviderNotSupportedError Provider 未注册
type ProviderNotSupportedError struct {
	*BaseError

	Provider  string
	Available []string
}

// NewProviderNotSupportedError 创建 Provider 未注册错误
func NewProviderNotSupportedError(provider string, available []string) *ProviderNotSupportedError {
	return &ProviderNotSupportedError{
		BaseError: &BaseError{
			Type:    ErrTypeProvider,
			Message: fmt.Sprintf("provider %q is not registered (available: %v)", provider, available),
		},
		Provider:  provider,
		Available: available,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 响应与流式错误
// ═══════════════════════════════════════════════════════════════════════════

// ResponseError 响应解析错误
type ResponseError struct {
	*BaseError

	Field string // 出错的字段
}

// NewResponseError 创建响应错误
func NewResponseError(field string, err error) *ResponseError {
	return &ResponseError{
		BaseError: &BaseError{
			Type:    ErrTypeResponse,
			Message: fmt.Sprintf("failed to parse response field '%s'", field),
			Err:     err,
		},
		Field: field,
	}
}

// StreamError 流式错误
type StreamError struct {
	*BaseError
}

// NewStreamError 创建流式错误
func NewStreamError(message string, err error) *StreamError {
	return &StreamError{
		BaseError: &BaseError{
			Type:    ErrTypeStream,
			Message: message,
			Err:     err,
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 错误匹配函数（支持 errors.Is/As）
// ═══════════════════════════════════════════════════════════════════════════

// IsConfigError 检查是否为配置错误
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsRequestError 检查是否为请求错误
func IsRequestError(err error) bool {
	var e *RequestError
	return errors.As(err, &e)
}

// IsHTTPError 检查是否为 HTTP 错误
func IsHTTPError(err error) bool {
	var e *HTTPError
	return errors.As(err, &e)
}

// IsAPIError 检查是否为 API 错误
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsAuthenticationError 检查是否为认证错误
func IsAuthenticationError(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

// IsRateLimitError 检查是否为限流错误
func IsRateLimitError(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsInvalidRequestError 检查是否为无效请求错误
func IsInvalidRequestError(err error) bool {
	var e *InvalidRequestError
	return errors.As(err, &e)
}

// IsContextLengthExceededError 检查是否为上下文超限错误
func IsContextLengthExceededError(err error) bool {
	var e *ContextLengthExceededError
	return errors.As(err, &e)
}

// IsContentFilterError 检查是否为内容过滤错误
func IsContentFilterError(err error) bool {
	var e *ContentFilterError
	return errors.As(err, &e)
}

// IsNotFoundError 检查是否为资源不存在错误
func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsBatchError 检查是否为批处理错误
func IsBatchError(err error) bool {
	var e *BatchError
	return errors.As(err, &e)
}

// IsFileError 检查是否为文件错误
func IsFileError(err error) bool {
	var e *FileError
	return errors.As(err, &e)
}

// IsProviderNotSupportedError 检查是否为 Provider 未注册错误
func IsProviderNotSupportedError(err error) bool {
	var e *ProviderNotSupportedError
	return errors.As(err, &e)
}

// IsResponseError 检查是否为响应解析错误
func IsResponseError(err error) bool {
	var e *ResponseError
	return errors.As(err, &e)
}

// IsStreamError 检查是否为流式错误
func IsStreamError(err error) bool {
	var e *StreamError
	return errors.As(err, &e)
}

// IsRetryableError 检查错误是否可重试
//
// 限流错误与 5xx 一类的临时性 API 错误视为可重试；
// 认证、上下文超限、无效请求不可重试。
func IsRetryableError(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var api *APIError
	if errors.As(err, &api) {
		return api.IsRetryable()
	}
	return false
}

// GetAPIError 提取 APIError（如果存在）
func GetAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetRetryAfter 提取限流等待时长（如果是限流错误）
func GetRetryAfter(err error) (time.Duration, bool) {
	var e *RateLimitError
	if errors.As(err, &e) {
		return e.RetryAfter, true
	}
	return 0, false
}

// GetStatusCode 提取 HTTP 状态码（如果错误携带）
func GetStatusCode(err error) int {
	if e, ok := GetAPIError(err); ok {
		return e.StatusCode
	}
	var auth *AuthenticationError
	if errors.As(err, &auth) {
		return auth.StatusCode
	}
	var invalid *InvalidRequestError
	if errors.As(err, &invalid) {
		return invalid.StatusCode
	}
	return 0
}
