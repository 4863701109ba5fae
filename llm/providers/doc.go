// Package providers 包含各 LLM 提供者共享的辅助函数和通用类型。
//
// 每个具体提供者位于独立的子包中（deepseek、qwen、doubao、openai、
// grok、anthropic、gemini）。兼容 OpenAI 协议的提供者嵌入
// openaicompat.Provider，只覆盖名称、BaseURL、默认模型与辩论人设。
package providers
