// Package openaicompat 是所有兼容 OpenAI 协议提供者的可嵌入基础实现。
//
// 各提供者子包只需填写 Config（名称、BaseURL、默认模型、辩论人设）
// 并按需覆盖请求头构建，即可获得完整的同步与 SSE 流式能力。
package openaicompat
