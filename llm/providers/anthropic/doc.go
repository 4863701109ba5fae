// Package anthropic 实现 Anthropic Claude 的 llm.Provider 适配。
//
// Claude 的认证头、请求结构与 SSE 事件语法均与 OpenAI 兼容协议不同，
// 因此不嵌入 openaicompat 基座而是独立实现。
package anthropic
