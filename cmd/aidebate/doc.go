// aidebate 是多模型辩论服务的命令行入口。
//
// serve 命令启动 WebSocket 服务（/ws/debate），附带 /healthz 健康检查
// 与 /metrics Prometheus 指标端点。
package main
