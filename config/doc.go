// Package config 提供 AIDebate 的配置加载与校验。
//
// 配置来源按优先级依次为：内置默认值、YAML 配置文件、环境变量。
// 各 LLM 后端的凭证环境变量（OPENAI_API_KEY、DEEPSEEK_API_KEY 等）
// 与通行约定保持一致。
package config
