// Package localmock 提供不发起网络请求的本地 Mock 连接器
//
// 本包实现了 [llmconn.Connector] 接口的完整操作集，用于测试和离线开发：
//
//   - Chat: 预设响应、响应队列、动态函数、场景配置四种响应来源
//   - Batch: 内存作业生命周期，状态随 Status 查询推进
//   - File: 内存文件存储
//
// # 快速开始
//
//	conn := localmock.New(localmock.WithResponse("你好"))
//	resp, _ := conn.Chat().Invoke(ctx, messages, nil)
//	fmt.Println(resp.Content()) // 你好
//
// # 场景配置
//
// 场景配置支持 YAML / JSON / TOML 三种格式，可描述多轮对话和工具调用：
//
//	conn := localmock.New(localmock.WithConfigFile("scenarios.yaml"))
//	conn.UseScenario("weather")
//
// 配置示例（YAML）：
//
//	default_response: "默认响应"
//	scenarios:
//	  - name: weather
//	    turns:
//	      - user: "北京天气怎么样？"
//	        tools:
//	          - name: get_weather
//	            input: {city: "北京"}
//	      - assistant: "北京今天晴，25 度。"
//
// 响应文本支持 text/template 语法，内置 env / default 函数，
// 并暴露 LAST_USER_MESSAGE 变量。
//
// # 批处理生命周期
//
// Create 后作业处于 validating，第一次 Status 查询推进到 in_progress，
// 第二次推进到 completed，覆盖真实提供者的完整轮询路径：
//
//	job, _ := conn.Batch().Create(ctx, jsonl, "24h")
//	_, err := conn.Batch().Result(ctx, job.ID) // BatchError：尚未完成
//
// # 调用断言
//
// [Client.Calls]、[Client.CallCount]、[Client.LastCall] 提供测试断言所需的
// 调用记录；SetResponse / SetError 可在运行中切换行为。
package localmock
