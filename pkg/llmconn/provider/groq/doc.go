// Package groq 提供 Groq 的 LLM 连接器实现
//
// Groq 的 API 完全兼容 OpenAI 格式，本包复用
// [github.com/lwmacct/260828-go-pkg-llmconn/pkg/llmconn/provider/openai]
// 的客户端，仅替换默认地址、默认模型与错误标注名。
//
// # 快速开始
//
//	client, err := groq.New(&groq.Config{
//	    APIKey: os.Getenv("GROQ_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Chat().Invoke(ctx, messages, nil)
//
// # 注意事项
//
//   - Groq 的批处理完成窗口支持 24h 到 7d
//   - 部分 OpenAI 参数（如 logit_bias）Groq 不支持，传入会返回 InvalidRequestError
package groq
