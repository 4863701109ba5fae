package doubao

import (
	"context"

	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// DoubaoProvider 实现字节跳动豆包 LLM 提供者.
// Doubao 使用 OpenAI 兼容的 API 格式（火山方舟），但 model 参数
// 必须是接入点 ID（Endpoint ID），不能使用模型名称。
type DoubaoProvider struct {
	*openaicompat.Provider
	endpointID string
}

// NewDoubaoProvider 创建新的 Doubao 提供者实例.
func NewDoubaoProvider(cfg providers.DoubaoConfig, logger *zap.Logger) *DoubaoProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	return &DoubaoProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName: "doubao",
			DisplayName:  "Doubao",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.EndpointID,
			Persona:      "You are Doubao, a helpful assistant in a group debate.",
			Timeout:      cfg.Timeout,
			EndpointPath: "/chat/completions",
		}, logger),
		endpointID: cfg.EndpointID,
	}
}

func (p *DoubaoProvider) missingEndpoint() *llm.Error {
	return &llm.Error{
		Code:     llm.ErrProviderUnavailable,
		Message:  "doubao endpoint ID not configured",
		Provider: p.Name(),
	}
}

// rewrite 将名单里的模型标签替换为真实接入点 ID。
// 上游只接受 Endpoint ID，"doubao-pro" 这类名称仅用于名单展示。
func (p *DoubaoProvider) rewrite(req *llm.ChatRequest) *llm.ChatRequest {
	out := *req
	out.Model = p.endpointID
	return &out
}

// Completion 校验接入点 ID 后委托给兼容基座。
func (p *DoubaoProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.endpointID == "" {
		return nil, p.missingEndpoint()
	}
	return p.Provider.Completion(ctx, p.rewrite(req))
}

// Stream 校验接入点 ID 后委托给兼容基座。
func (p *DoubaoProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	if p.endpointID == "" {
		return nil, p.missingEndpoint()
	}
	return p.Provider.Stream(ctx, p.rewrite(req))
}
