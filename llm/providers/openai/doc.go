// Package openai 实现 OpenAI 的 llm.Provider 适配。
package openai
