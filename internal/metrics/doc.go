// Package metrics 提供面向 Prometheus 的内部指标收集，
// 覆盖 WebSocket 连接、事件广播、LLM 请求与辩论进度。
package metrics
