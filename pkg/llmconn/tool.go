package llmconn

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ═══════════════════════════════════════════════════════════════════════════
// 工具 Schema 派生
// ═══════════════════════════════════════════════════════════════════════════

// NewToolSchema 从 Go 结构体派生工具 Schema
//
// input 为工具入参的结构体（值或指针均可），
// 通过反射生成 JSON Schema 作为 InputSchema。
// 字段描述可用 jsonschema_description 结构体标签指定。
//
// 使用示例：
//
//	type weatherInput struct {
//	    City string `json:"city" jsonschema_description:"城市名称"`
//	    Unit string `json:"unit,omitempty"`
//	}
//
//	tool := llmconn.NewToolSchema("get_weather", "查询城市天气", weatherInput{})
func NewToolSchema(name, description string, input any) ToolSchema {
	return ToolSchema{
		Name:        name,
		Description: description,
		InputSchema: reflectSchema(input),
	}
}

// reflectSchema 生成内联的 JSON Schema map
func reflectSchema(input any) map[string]any {
	if input == nil {
		return map[string]any{"type": "object"}
	}

	reflector := &jsonschema.Reflector{
		// 内联所有定义，Provider API 不支持 $ref
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(input)

	// 通过 JSON 往返转为 map 形式（请求体统一用 map 构建）
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}

	// 顶层元数据字段对 API 无意义
	delete(m, "$schema")
	delete(m, "$id")
	if _, ok := m["type"]; !ok {
		m["type"] = "object"
	}

	return m
}
