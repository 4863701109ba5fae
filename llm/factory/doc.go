// Package factory 按模型名称路由到具体的 llm.Provider 实现。
package factory
