// Package anthropic 提供 Anthropic Claude API 的 LLM 连接器实现
//
// 本包实现了 [llmconn.Connector] 接口，封装 Anthropic 特有的协议差异。
//
// # 概述
//
// [Client] 是核心类型：
//
//   - Chat: /messages 端点的同步与流式补全
//   - Batch: Message Batches API（内联请求，不经过文件上传）
//   - File: beta Files API（需要 anthropic-beta 头）
//
// # 快速开始
//
//	client, err := anthropic.New(&anthropic.Config{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-haiku-latest",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Chat().Invoke(ctx, messages, nil)
//
// # 协议差异
//
// 与 OpenAI 兼容协议的主要差异（由 protocol/anthropic 适配器封装）：
//
//   - 认证使用 X-Api-Key 头，且必须携带 anthropic-version
//   - 系统提示使用独立的 system 参数
//   - max_tokens 必须提供（默认 8192）
//   - 工具参数直接传对象，结果内联在 content 数组
//   - stop_reason 映射为标准 finish_reason（end_turn → stop 等）
//
// # 批处理
//
// Message Batches API 内联请求，Create 在本地将 JSONL 转换为
// requests 数组，Result 直接下载 JSONL 结果，无输入/输出文件 ID：
//
//	job, _ := client.Batch().Create(ctx, jsonl, "")
//	// 轮询 Status 直到 job.Status.IsTerminal()
//	result, _ := client.Batch().Result(ctx, job.ID)
//
// # Extended Thinking
//
// 设置 Options.ReasoningBudget 启用扩展思考（最小 1024 tokens）：
//
//	resp, _ := client.Chat().Invoke(ctx, messages, &llmconn.Options{
//	    ReasoningBudget: 2048,
//	})
//
// # 线程安全
//
// [Client] 是线程安全的，可以并发调用各子接口方法。
package anthropic
