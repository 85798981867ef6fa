// Package llmconn 提供多 LLM 提供者 HTTP API 的统一客户端抽象
//
// 本包定义了与 LLM 服务交互所需的核心类型和接口，包括：
//   - [Connector]: 统一的提供者连接器，暴露 Chat/Batch/File 子接口
//   - [Message]: 对话消息结构（文本、图片、文档、工具块）
//   - [Response] / [Event] / [Stream]: 同步响应与流式事件
//   - [BatchJob] / [FileHandle]: 批处理与文件句柄
//   - 统一异常分类：认证、限流、上下文超限等
//
// # 核心类型
//
// [Connector] 接口定义了提供者的统一操作集，子接口按操作域划分：
// [ChatAPI]（同步与流式补全）、[BatchAPI]（批处理作业）、
// [FileAPI]（文件上传下载）。
//
// [Stream] 是惰性、单次、前向的事件游标，迭代驱动底层 HTTP 响应的消费；
// 提前放弃时 Close 释放连接。
//
// # 工厂
//
// 具体 Connector 通过 pkg/llmconn/provider 的注册表工厂创建：
//
//	conn, err := provider.New("openai", &llmconn.Config{APIKey: "sk-xxx"})
//	resp, err := conn.Chat().Invoke(ctx, []llmconn.Message{
//	    llmconn.NewUserMessage("Hello!"),
//	}, nil)
//
// 自定义提供者经 provider.Register 在运行时注册。
//
// # 并发模型
//
// 每个操作是一次独立的阻塞调用，接受 context.Context 以支持取消与超时。
// 调用间无共享可变状态，Connector 可安全并发使用；
// 并发由调用方 fan-out goroutine 实现，库内没有调度器。
//
// # 错误处理
//
// 提供者错误在适配器边界统一映射为本包的类型化错误：
// [AuthenticationError]、[RateLimitError]（携带 RetryAfter）、
// [ContextLengthExceededError]、[NotFoundError]、[APIError] 等。
// 库内不做自动重试，退避策略由调用方决定。
//
// # 环境变量
//
// APIKey 未显式配置时按 Provider 类型回退到环境变量：
//   - OPENAI_API_KEY / GROQ_API_KEY / ANTHROPIC_API_KEY
//   - LLM_API_KEY（通用回退）
//
// # 协议实现
//
// 具体实现位于子包：
//   - [pkg/llmconn/provider/openai]: OpenAI（Chat/Batches/Files）
//   - [pkg/llmconn/provider/groq]: Groq（OpenAI 兼容）
//   - [pkg/llmconn/provider/anthropic]: Anthropic（Messages/Message Batches/Files beta）
//   - [pkg/llmconn/provider/localmock]: 本地内存实现（测试用）
//
// # 包文件组织
//
//   - types.go: Connector 及子接口、Options、Response
//   - message.go: Message、ContentBlock、ToolCall
//   - event.go: Event、Stream
//   - batch.go / file.go: 批处理与文件类型
//   - errors.go: 统一异常分类
//   - provider_type.go / env.go: Provider 枚举与环境变量探测
package llmconn
