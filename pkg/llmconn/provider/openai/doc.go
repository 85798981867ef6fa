// Package openai 提供 OpenAI 兼容格式的 LLM 连接器实现
//
// 本包实现了 [llmconn.Connector] 接口，支持所有 OpenAI 兼容的 API 服务，
// 包括 OpenAI 官方 API、Groq、OpenRouter、本地 Ollama 等。
//
// # 概述
//
// [Client] 是核心类型，封装了与 OpenAI 兼容 API 的通信逻辑：
//
//   - Chat: 同步补全 (Invoke) 和流式补全 (Stream)
//   - Batch: 文件引用式批处理（上传 JSONL → 创建作业 → 下载结果）
//   - File: Files API（上传、查询、下载、删除、列表）
//   - 自动处理消息格式转换与错误分类
//
// # 快速开始
//
//	client, err := openai.New(&openai.Config{
//	    APIKey: "sk-xxx",
//	    Model:  "gpt-4o-mini",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// 同步补全
//	resp, err := client.Chat().Invoke(ctx, messages, nil)
//
//	// 流式补全
//	stream, err := client.Chat().Stream(ctx, messages, nil)
//
// # 支持的服务
//
// 本包支持所有遵循 OpenAI Chat Completions API 格式的服务：
//
//   - OpenAI: https://api.openai.com/v1
//   - Groq: https://api.groq.com/openai/v1
//   - OpenRouter: https://openrouter.ai/api/v1
//   - Ollama: http://localhost:11434/v1
//   - 其他兼容服务
//
// # 批处理
//
// OpenAI 的批处理通过文件引用输入输出：
//
//	job, _ := client.Batch().Create(ctx, jsonl, "24h")
//	for {
//	    job, _ = client.Batch().Status(ctx, job.ID)
//	    if job.Status.IsTerminal() {
//	        break
//	    }
//	    time.Sleep(10 * time.Second)
//	}
//	result, _ := client.Batch().Result(ctx, job.ID)
//
// # 流式响应
//
// 使用 [llmconn.StreamParser] 解析流式响应，自动聚合文本和工具调用：
//
//	stream, _ := client.Chat().Stream(ctx, messages, nil)
//	defer stream.Close()
//	result := llmconn.ParseStream(stream)
//	fmt.Println(result.Message.GetContent())
//
// # 错误处理
//
// API 错误在客户端边界映射为统一错误类型
// （llmconn.AuthenticationError、RateLimitError 等），
// 使用 errors.As 或 llmconn.Is* 辅助函数判断。
//
// # 线程安全
//
// [Client] 是线程安全的，可以并发调用各子接口方法。
// 但不应在多个 goroutine 中同时修改配置。
package openai
