// Package qwen 实现阿里巴巴通义千问的 llm.Provider 适配。
package qwen
