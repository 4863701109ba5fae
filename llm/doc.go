// Package llm 定义跨后端统一的聊天请求/响应类型与 Provider 接口。
//
// 具体后端实现位于 llm/providers 下的子包，按名称创建实例的工厂
// 位于 llm/factory。
package llm
