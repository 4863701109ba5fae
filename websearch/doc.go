// Package websearch 提供基于 DuckDuckGo Instant Answer API 的联网搜索，
// 用于在辩论开始前为话题补充实时背景信息。
package websearch
