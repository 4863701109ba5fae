// Package gemini 实现 Google Gemini 的 llm.Provider 适配。
//
// Gemini 使用 contents/parts 请求结构与 URL key 认证，
// 且多发言者会话需要压平为单条提示词，因此独立实现而非复用 openaicompat。
package gemini
