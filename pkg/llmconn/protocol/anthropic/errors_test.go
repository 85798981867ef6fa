package anthropic

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn"
)

// ═══════════════════════════════════════════════════════════════════════════
// 错误分类测试
// ═══════════════════════════════════════════════════════════════════════════

func TestErrorClassifier_AuthenticationError(t *testing.T) {
	classifier := NewErrorClassifier()

	body := `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`
	err := classifier.Classify(401, http.Header{}, body)

	assert.True(t, llmconn.IsAuthenticationError(err))
	assert.Equal(t, 401, llmconn.GetStatusCode(err))
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestErrorClassifier_PermissionError(t *testing.T) {
	classifier := NewErrorClassifier()

	body := `{"type":"error","error":{"type":"permission_error","message":"not authorized for this resource"}}`
	err := classifier.Classify(403, http.Header{}, body)

	// permission_error 也映射为认证错误
	assert.True(t, llmconn.IsAuthenticationError(err))
	assert.Equal(t, 403, llmconn.GetStatusCode(err))
}

func TestErrorClassifier_RateLimitError(t *testing.T) {
	classifier := NewErrorClassifier()

	header := http.Header{}
	header.Set("Retry-After", "30")
	body := `{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`

	err := classifier.Classify(429, header, body)

	require.True(t, llmconn.IsRateLimitError(err))
	retryAfter, ok := llmconn.GetRetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, retryAfter)
}

func TestErrorClassifier_NotFoundError(t *testing.T) {
	classifier := NewErrorClassifier()

	body := `{"type":"error","error":{"type":"not_found_error","message":"model not found"}}`
	err := classifier.Classify(404, http.Header{}, body)

	assert.True(t, llmconn.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "model not found")
}

func TestErrorClassifier_ContextLengthExceeded(t *testing.T) {
	classifier := NewErrorClassifier()

	// Anthropic 没有独立错误类型，通过消息文本识别
	body := `{"type":"error","error":{"type":"invalid_request_error","message":"prompt is too long: 210000 tokens > 200000 maximum"}}`
	err := classifier.Classify(400, http.Header{}, body)

	assert.True(t, llmconn.IsContextLengthExceededError(err))
	assert.False(t, llmconn.IsInvalidRequestError(err))
}

func TestErrorClassifier_InvalidRequestError(t *testing.T) {
	classifier := NewErrorClassifier()

	body := `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: must be positive"}}`
	err := classifier.Classify(400, http.Header{}, body)

	require.True(t, llmconn.IsInvalidRequestError(err))
	assert.Equal(t, 400, llmconn.GetStatusCode(err))
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestErrorClassifier_OverloadedError(t *testing.T) {
	classifier := NewErrorClassifier()

	header := http.Header{}
	header.Set("Request-Id", "req_anthropic_123")
	body := `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`

	err := classifier.Classify(529, header, body)

	apiErr, ok := llmconn.GetAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 529, apiErr.StatusCode)
	assert.Equal(t, "anthropic", apiErr.Provider)
	assert.Equal(t, "req_anthropic_123", apiErr.RequestID)
	assert.Equal(t, "overloaded_error", apiErr.ErrorCode)
}

func TestErrorClassifier_StatusFallback(t *testing.T) {
	classifier := NewErrorClassifier()

	t.Run("无错误体按状态码降级_401", func(t *testing.T) {
		err := classifier.Classify(401, http.Header{}, "unauthorized")
		assert.True(t, llmconn.IsAuthenticationError(err))
	})

	t.Run("无错误体按状态码降级_429", func(t *testing.T) {
		err := classifier.Classify(429, http.Header{}, "too many requests")
		assert.True(t, llmconn.IsRateLimitError(err))
	})

	t.Run("无错误体按状态码降级_404", func(t *testing.T) {
		err := classifier.Classify(404, http.Header{}, "not found")
		assert.True(t, llmconn.IsNotFoundError(err))
	})

	t.Run("无错误体按状态码降级_400", func(t *testing.T) {
		err := classifier.Classify(400, http.Header{}, "bad request")
		assert.True(t, llmconn.IsInvalidRequestError(err))
	})

	t.Run("未知状态码降级为APIError", func(t *testing.T) {
		err := classifier.Classify(500, http.Header{}, "internal error")
		apiErr, ok := llmconn.GetAPIError(err)
		require.True(t, ok)
		assert.Equal(t, 500, apiErr.StatusCode)
		assert.True(t, llmconn.IsRetryableError(err))
	})
}

func TestErrorClassifier_UnparseableBody(t *testing.T) {
	classifier := NewErrorClassifier()

	// 非 JSON 响应体时，原始内容作为错误消息
	err := classifier.Classify(403, http.Header{}, "<html>Forbidden</html>")

	assert.True(t, llmconn.IsAuthenticationError(err))
	assert.Contains(t, err.Error(), "<html>Forbidden</html>")
}
