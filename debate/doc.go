// Package debate 实现多模型辩论的编排核心：
// 共享会话记录、WebSocket 事件广播、轮次×发言者的串行推进、
// 流式输出的统一归一化以及收尾总结。
//
// 事件顺序对所有客户端一致：广播整体串行化，
// 单个连接的发送失败只摘除该连接，不影响辩论推进。
package debate
