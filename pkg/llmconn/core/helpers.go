package core

import (
	"net/http"
	"strconv"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 类型转换辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// GetInt64 将 any 类型安全转换为 int64
//
// 支持 float64（JSON 数字的默认类型）、int、int64，其他类型返回 0。
func GetInt64(val any) int64 {
	switch v := val.(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

// GetInt 将 any 类型安全转换为 int
func GetInt(val any) int {
	return int(GetInt64(val))
}

// GetFloat64 将 any 类型安全转换为 float64
func GetFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// GetString 将 any 类型安全转换为 string
func GetString(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// GetMap 将 any 类型安全转换为 map[string]any
func GetMap(val any) map[string]any {
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// HTTP 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// ParseRetryAfter 解析 Retry-After 响应头
//
// 支持两种格式：秒数（"30"）和 HTTP 日期。
// 头缺失或无法解析时返回 0。
func ParseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds * float64(time.Second))
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}

// ParseUnixOrRFC3339 解析时间戳字段为 Unix 秒
//
// 支持 JSON 数字（OpenAI 的 created_at）和 RFC3339 字符串（Anthropic）。
// 无法解析时返回 0。
func ParseUnixOrRFC3339(val any) int64 {
	switch v := val.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		if v == "" {
			return 0
		}
		if at, err := time.Parse(time.RFC3339, v); err == nil {
			return at.Unix()
		}
		return 0
	default:
		return 0
	}
}
