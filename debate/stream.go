package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/hoofy2009-dotcom/AIDEBATE/internal/metrics"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"go.uber.org/zap"
)

// StreamText 将任意 Provider 统一为增量文本流。
// 降级阶梯：
//  1. 流式请求成功 → 原样转发增量片段
//  2. 流式建立失败 → 退化为同步请求，整段文本作为单个片段
//  3. 同步也失败 → 产出错误描述文本，流程不中断
//  4. 流中途断开 → 已有内容保留，追加错误尾片段
//
// 返回的通道总是会关闭，调用方可安全 range。
func StreamText(ctx context.Context, p llm.Provider, req *llm.ChatRequest, logger *zap.Logger, collector *metrics.Collector) <-chan string {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make(chan string)

	go func() {
		defer close(out)
		start := time.Now()

		chunks, err := p.Stream(ctx, req)
		if err != nil {
			// 流式建立失败，退化为同步请求
			logger.Warn("stream setup failed, falling back to completion",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			text := completionFallback(ctx, p, req, logger)
			if collector != nil {
				collector.LLMRequest(p.Name(), "fallback", time.Since(start))
			}
			emit(ctx, out, text)
			return
		}

		status := "success"
		for chunk := range chunks {
			if chunk.Err != nil {
				// 流中途断开：保留已有内容，追加错误尾片段
				logger.Warn("stream interrupted",
					zap.String("provider", p.Name()),
					zap.String("error", chunk.Err.Message),
				)
				status = "interrupted"
				emit(ctx, out, fmt.Sprintf("\n[Error: %s]", chunk.Err.Message))
				break
			}
			if chunk.Delta.Content != "" {
				if !emit(ctx, out, chunk.Delta.Content) {
					return
				}
			}
		}

		if collector != nil {
			collector.LLMRequest(p.Name(), status, time.Since(start))
		}
	}()

	return out
}

// completionFallback 执行同步请求并返回完整文本。
// 同步请求也失败时返回错误描述，让发言位不留空。
func completionFallback(ctx context.Context, p llm.Provider, req *llm.ChatRequest, logger *zap.Logger) string {
	resp, err := p.Completion(ctx, req)
	if err != nil {
		logger.Error("completion fallback failed",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return fmt.Sprintf("Error from %s: %v", p.DisplayName(), err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Sprintf("Error from %s: empty response", p.DisplayName())
	}
	return resp.Choices[0].Message.Content
}

func emit(ctx context.Context, out chan<- string, text string) bool {
	if text == "" {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case out <- text:
		return true
	}
}
