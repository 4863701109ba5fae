// Package deepseek 实现 DeepSeek 的 llm.Provider 适配。
package deepseek
