package openai

import (
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// OpenAIProvider 实现 OpenAI LLM 提供者.
type OpenAIProvider struct {
	*openaicompat.Provider
}

// NewOpenAIProvider 创建新的 OpenAI 提供者实例.
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}

	return &OpenAIProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "openai",
			DisplayName:   "ChatGPT",
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: "gpt-4o",
			Persona:       "You are a participant in a group debate. Express your opinion clearly, critique others constructively, and try to reach a conclusion.",
			Timeout:       cfg.Timeout,
		}, logger),
	}
}
