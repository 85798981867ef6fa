package openai

import "strings"

// ═══════════════════════════════════════════════════════════════════════════
// Reasoning 模型适配
// ═══════════════════════════════════════════════════════════════════════════

// ReasoningEffort reasoning_effort 参数的取值
type ReasoningEffort string

const (
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortHigh    ReasoningEffort = "high"
)

// reasoningModelPrefixes 需要特殊采样约束的模型系列
//
// 覆盖 OpenAI o 系列、gpt-5 系列，以及经 OpenAI 兼容端点
// （如 Groq）暴露的 DeepSeek 推理模型。
var reasoningModelPrefixes = []string{
	"o1-",
	"o3-",
	"o4-",
	"gpt-5",
	"deepseek-reasoner",
	"deepseek-r1",
}

// IsReasoningModel 判断模型是否属于推理系列
//
// 推理模型的 API 约束：temperature 固定为 1、不接受 top_p、
// 额外接受 reasoning_effort。模型名匹配不区分大小写。
func IsReasoningModel(model string) bool {
	name := strings.ToLower(model)
	for _, prefix := range reasoningModelPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// AdaptTemperatureForModel 按模型约束收敛温度
//
// 推理模型返回 1.0，其余模型原样透传。
func AdaptTemperatureForModel(model string, requestedTemp float64) float64 {
	if IsReasoningModel(model) {
		return 1.0
	}
	return requestedTemp
}

// IsValidReasoningEffort 校验 reasoning_effort 取值
//
// 空串视为"未设置"，同样有效。
func IsValidReasoningEffort(effort string) bool {
	switch ReasoningEffort(effort) {
	case ReasoningEffortMinimal, ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
		return true
	}
	return effort == ""
}
