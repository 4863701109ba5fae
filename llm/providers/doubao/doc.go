// Package doubao 实现字节跳动豆包（火山方舟）的 llm.Provider 适配。
package doubao
