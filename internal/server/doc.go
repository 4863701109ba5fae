// Package server 提供 HTTP 服务器生命周期管理：非阻塞启动、
// 优雅关闭与 SIGINT/SIGTERM 信号监听。
//
// 默认写入超时为 0，因为 WebSocket 长连接在整场辩论期间
// 持续推送流式输出，固定写超时会掐断连接。
package server
