// =============================================================================
// 📦 AIDebate 配置
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 AIDebate 的完整配置结构
type Config struct {
	// Server 服务器配置
	Server ServerConfig `yaml:"server"`

	// Debate 辩论编排配置
	Debate DebateConfig `yaml:"debate"`

	// Providers 各 LLM 后端凭证
	Providers ProvidersConfig `yaml:"providers"`

	// Log 日志配置
	Log LogConfig `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 监听地址
	Addr string `yaml:"addr"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// 写入超时（流式响应期间为 0 表示不限制）
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// 允许的 WebSocket Origin 模式
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DebateConfig 辩论编排配置
type DebateConfig struct {
	// 未指定 rounds 时的默认轮数
	DefaultRounds int `yaml:"default_rounds"`
	// 轮数上限，超出部分截断
	MaxRounds int `yaml:"max_rounds"`
	// 默认总结者模型
	DefaultSummarizer string `yaml:"default_summarizer"`
	// 搜索结果的最大条数
	SearchMaxResults int `yaml:"search_max_results"`
	// 单次 LLM 请求的超时
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

// Credential 单个后端的接入凭证
type Credential struct {
	// API Key
	APIKey string `yaml:"api_key"`
	// 覆盖默认 Base URL（可选）
	BaseURL string `yaml:"base_url"`
	// 覆盖默认模型（可选）
	Model string `yaml:"model"`
}

// Available 判断凭证是否可用。
// 占位符（含 "your_" 的示例值）视为未配置。
func (c Credential) Available() bool {
	return c.APIKey != "" && !strings.Contains(c.APIKey, "your_")
}

// ProvidersConfig 各 LLM 后端的凭证集合
type ProvidersConfig struct {
	OpenAI   Credential `yaml:"openai"`
	Claude   Credential `yaml:"claude"`
	Gemini   Credential `yaml:"gemini"`
	Grok     Credential `yaml:"grok"`
	DeepSeek Credential `yaml:"deepseek"`
	Qwen     Credential `yaml:"qwen"`
	Doubao   Credential `yaml:"doubao"`

	// Doubao 的接入点 ID（其 "model" 参数实际是 Endpoint ID）
	DoubaoEndpointID string `yaml:"doubao_endpoint_id"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 级别: debug, info, warn, error
	Level string `yaml:"level"`
	// 格式: json, console
	Format string `yaml:"format"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Debate: DebateConfig{
			DefaultRounds:     1,
			MaxRounds:         10,
			DefaultSummarizer: "deepseek-chat",
			SearchMaxResults:  5,
			ProviderTimeout:   60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 加载配置：默认值 → YAML 文件（可选）→ 环境变量。
// path 为空或文件不存在时跳过文件加载。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖凭证与服务器地址。
// 凭证变量名沿用各厂商的通用约定，便于复用已有部署环境。
func (c *Config) applyEnv() {
	overlay := func(cred *Credential, key string) {
		if v := os.Getenv(key); v != "" {
			cred.APIKey = v
		}
	}

	overlay(&c.Providers.OpenAI, "OPENAI_API_KEY")
	overlay(&c.Providers.Claude, "ANTHROPIC_API_KEY")
	overlay(&c.Providers.Gemini, "GOOGLE_API_KEY")
	overlay(&c.Providers.Grok, "XAI_API_KEY")
	overlay(&c.Providers.DeepSeek, "DEEPSEEK_API_KEY")
	overlay(&c.Providers.Qwen, "DASHSCOPE_API_KEY")
	overlay(&c.Providers.Doubao, "VOLCENGINE_API_KEY")

	if v := os.Getenv("DOUBAO_ENDPOINT_ID"); v != "" {
		c.Providers.DoubaoEndpointID = v
	}
	if v := os.Getenv("AIDEBATE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AIDEBATE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate 校验配置的基本一致性
func (c *Config) Validate() error {
	if c.Debate.DefaultRounds < 0 {
		return fmt.Errorf("debate.default_rounds must be >= 0, got %d", c.Debate.DefaultRounds)
	}
	if c.Debate.MaxRounds < 1 {
		return fmt.Errorf("debate.max_rounds must be >= 1, got %d", c.Debate.MaxRounds)
	}
	if c.Debate.DefaultSummarizer == "" {
		return fmt.Errorf("debate.default_summarizer must not be empty")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	return nil
}
