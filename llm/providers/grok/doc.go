// Package grok 实现 xAI Grok 的 llm.Provider 适配。
package grok
