package openai

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/core"
)

// ═══════════════════════════════════════════════════════════════════════════
// OpenAI 错误分类器
// ═══════════════════════════════════════════════════════════════════════════

// ErrorClassifier OpenAI 错误分类器
//
// 解析 OpenAI 的错误体并映射到统一错误类型。
// OpenAI 错误体格式：
//
//	{"error": {"message": "...", "type": "...", "code": "...", "param": "..."}}
type ErrorClassifier struct {
	// Provider 填充到 APIError 的提供商名（openai / groq）
	Provider string
}

// NewErrorClassifier 创建 OpenAI 错误分类器
func NewErrorClassifier(provider string) *ErrorClassifier {
	return &ErrorClassifier{Provider: provider}
}

// apiErrorBody OpenAI 错误响应体
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
		Param   string `json:"param"`
	} `json:"error"`
}

// Classify 将 HTTP 错误响应映射为统一错误类型
//
// 映射规则：
//   - 401/403                          → AuthenticationError
//   - 429                              → RateLimitError（解析 Retry-After）
//   - 404                              → NotFoundError
//   - code=context_length_exceeded     → ContextLengthExceededError
//   - 消息含 "maximum context length"  → ContextLengthExceededError
//   - type/code 含 content_policy      → ContentFilterError
//   - 400/413/422                      → InvalidRequestError
//   - 其他                             → APIError
func (c *ErrorClassifier) Classify(statusCode int, header http.Header, body string) error {
	var parsed apiErrorBody
	_ = json.Unmarshal([]byte(body), &parsed)

	message := parsed.Error.Message
	if message == "" {
		message = body
	}
	errType := parsed.Error.Type
	code := codeString(parsed.Error.Code)
	requestID := header.Get("X-Request-Id")

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmconn.NewAuthenticationError(statusCode, message)

	case http.StatusTooManyRequests:
		return llmconn.NewRateLimitError(message, core.ParseRetryAfter(header))

	case http.StatusNotFound:
		return llmconn.NewNotFoundError(parsed.Error.Param, message)
	}

	if isContextLength(code, message) {
		return llmconn.NewContextLengthExceededError(message)
	}

	if isContentFilter(errType, code) {
		return llmconn.NewContentFilterError(message)
	}

	switch statusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		invalidErr := llmconn.NewInvalidRequestError(statusCode, message)
		invalidErr.Param = parsed.Error.Param
		return invalidErr
	}

	apiErr := llmconn.NewAPIError(statusCode, body).
		WithProvider(c.Provider).
		WithRequestID(requestID)
	if code != "" {
		apiErr = apiErr.WithErrorCode(code)
	}
	return apiErr
}

// isContextLength 判断是否为超出上下文长度错误
func isContextLength(code, message string) bool {
	if code == "context_length_exceeded" || code == "string_above_max_length" {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "maximum context length") ||
		strings.Contains(lower, "context length exceeded")
}

// isContentFilter 判断是否为内容审核拦截
func isContentFilter(errType, code string) bool {
	return code == "content_policy_violation" ||
		code == "content_filter" ||
		strings.Contains(errType, "content_policy")
}

// codeString OpenAI 的 code 字段可能是字符串或数字
func codeString(code any) string {
	switch v := code.(type) {
	case string:
		return v
	case float64:
		return strconv.Itoa(int(v))
	default:
		return ""
	}
}

// 确保 ErrorClassifier 实现了接口
var _ core.ErrorClassifier = (*ErrorClassifier)(nil)
