package anthropic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// Anthropic 错误分类器
// ═══════════════════════════════════════════════════════════════════════════

// ErrorClassifier Anthropic 错误分类器
//
// 解析 Anthropic 的错误体并映射到统一错误类型。
// Anthropic 错误体格式：
//
//	{"type": "error", "error": {"type": "invalid_request_error", "message": "..."}}
type ErrorClassifier struct{}

// NewErrorClassifier 创建 Anthropic 错误分类器
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// apiErrorBody Anthropic 错误响应体
type apiErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Classify 将 HTTP 错误响应映射为统一错误类型
//
// 映射规则（error.type 优先于状态码）：
//   - authentication_error / permission_error → AuthenticationError
//   - rate_limit_error                        → RateLimitError（解析 Retry-After）
//   - not_found_error                         → NotFoundError
//   - 消息含 "prompt is too long"             → ContextLengthExceededError
//   - invalid_request_error                   → InvalidRequestError
//   - overloaded_error 及其他                 → APIError
func (c *ErrorClassifier) Classify(statusCode int, header http.Header, body string) error {
	var parsed apiErrorBody
	_ = json.Unmarshal([]byte(body), &parsed)

	message := parsed.Error.Message
	if message == "" {
		message = body
	}
	requestID := header.Get("Request-Id")

	switch parsed.Error.Type {
	case "authentication_error", "permission_error":
		return llmconn.NewAuthenticationError(statusCode, message)

	case "rate_limit_error":
		return llmconn.NewRateLimitError(message, core.ParseRetryAfter(header))

	case "not_found_error":
		return llmconn.NewNotFoundError("", message)

	case "invalid_request_error":
		if isPromptTooLong(message) {
			return llmconn.NewContextLengthExceededError(message)
		}
		return llmconn.NewInvalidRequestError(statusCode, message)
	}

	// 错误体缺失或未知类型时按状态码降级
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmconn.NewAuthenticationError(statusCode, message)
	case http.StatusTooManyRequests:
		return llmconn.NewRateLimitError(message, core.ParseRetryAfter(header))
	case http.StatusNotFound:
		return llmconn.NewNotFoundError("", message)
	case http.StatusBadRequest:
		return llmconn.NewInvalidRequestError(statusCode, message)
	}

	apiErr := llmconn.NewAPIError(statusCode, body).
		WithProvider("anthropic").
		WithRequestID(requestID)
	if parsed.Error.Type != "" {
		apiErr = apiErr.WithErrorCode(parsed.Error.Type)
	}
	return apiErr
}

// isPromptTooLong 判断是否为超出上下文长度错误
//
// Anthropic 没有独立的错误类型，通过消息文本识别。
func isPromptTooLong(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "prompt is too long") ||
		strings.Contains(lower, "exceed context limit")
}

// 确保 ErrorClassifier 实现了接口
var _ core.ErrorClassifier = (*ErrorClassifier)(nil)
