package factory

import (
	"strings"
	"time"

	"github.com/hoofy2009-dotcom/AIDEBATE/config"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/anthropic"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/deepseek"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/doubao"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/gemini"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/grok"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/openai"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/qwen"
	"go.uber.org/zap"
)

// Factory 根据模型名称构造对应的 llm.Provider。
// 路由按模型名的子串匹配，与常见网关的约定一致：
// "gpt-4o" → OpenAI，"claude-3-5-sonnet" → Claude，依此类推。
type Factory struct {
	cfg     *config.Config
	timeout time.Duration
	logger  *zap.Logger
}

// New 创建 Provider 工厂
func New(cfg *config.Config, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Debate.ProviderTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Factory{cfg: cfg, timeout: timeout, logger: logger}
}

func (f *Factory) base(cred config.Credential, model string) providers.BaseProviderConfig {
	if cred.Model != "" {
		model = cred.Model
	}
	return providers.BaseProviderConfig{
		APIKey:  cred.APIKey,
		BaseURL: cred.BaseURL,
		Model:   model,
		Timeout: f.timeout,
	}
}

func unavailable(name string) error {
	return &llm.Error{
		Code:     llm.ErrProviderUnavailable,
		Message:  name + " API key not configured",
		Provider: name,
	}
}

// Resolve 根据模型名称返回对应的 Provider。
// 对应后端凭证未配置时返回 llm.ErrProviderUnavailable，
// 由编排层降级为模拟发言。
func (f *Factory) Resolve(model string) (llm.Provider, error) {
	p := f.cfg.Providers
	lower := strings.ToLower(model)

	switch {
	case strings.Contains(lower, "deepseek"):
		if !p.DeepSeek.Available() {
			return nil, unavailable("deepseek")
		}
		return deepseek.NewDeepSeekProvider(providers.DeepSeekConfig{
			BaseProviderConfig: f.base(p.DeepSeek, model),
		}, f.logger), nil

	case strings.Contains(lower, "claude"):
		if !p.Claude.Available() {
			return nil, unavailable("claude")
		}
		return anthropic.NewClaudeProvider(providers.ClaudeConfig{
			BaseProviderConfig: f.base(p.Claude, model),
		}, f.logger), nil

	case strings.Contains(lower, "grok"):
		if !p.Grok.Available() {
			return nil, unavailable("grok")
		}
		return grok.NewGrokProvider(providers.GrokConfig{
			BaseProviderConfig: f.base(p.Grok, model),
		}, f.logger), nil

	case strings.Contains(lower, "gemini"):
		if !p.Gemini.Available() {
			return nil, unavailable("gemini")
		}
		return gemini.NewGeminiProvider(providers.GeminiConfig{
			BaseProviderConfig: f.base(p.Gemini, model),
		}, f.logger), nil

	case strings.Contains(lower, "qwen"):
		if !p.Qwen.Available() {
			return nil, unavailable("qwen")
		}
		return qwen.NewQwenProvider(providers.QwenConfig{
			BaseProviderConfig: f.base(p.Qwen, model),
		}, f.logger), nil

	case strings.Contains(lower, "doubao"):
		if !p.Doubao.Available() {
			return nil, unavailable("doubao")
		}
		return doubao.NewDoubaoProvider(providers.DoubaoConfig{
			BaseProviderConfig: f.base(p.Doubao, model),
			EndpointID:         p.DoubaoEndpointID,
		}, f.logger), nil

	default:
		// 未识别的模型名默认走 OpenAI（包括 gpt-*）
		if !p.OpenAI.Available() {
			return nil, unavailable("openai")
		}
		if model == "" {
			model = "gpt-3.5-turbo"
		}
		return openai.NewOpenAIProvider(providers.OpenAIConfig{
			BaseProviderConfig: f.base(p.OpenAI, model),
		}, f.logger), nil
	}
}
