package debate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 可配置的 Provider 桩
type fakeProvider struct {
	name        string
	display     string
	chunks      []llm.StreamChunk
	streamErr   error
	completion  *llm.ChatResponse
	completeErr error
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) DisplayName() string { return f.display }

func (f *fakeProvider) Completion(_ context.Context, _ *llm.ChatRequest) (*llm.ChatResponse, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completion, nil
}

func (f *fakeProvider) Stream(_ context.Context, _ *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan llm.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func textChunk(text string) llm.StreamChunk {
	return llm.StreamChunk{Delta: llm.Message{Role: llm.RoleAssistant, Content: text}}
}

func collect(ch <-chan string) string {
	var b strings.Builder
	for s := range ch {
		b.WriteString(s)
	}
	return b.String()
}

func TestStreamTextForwardsDeltas(t *testing.T) {
	p := &fakeProvider{
		name:    "deepseek",
		display: "DeepSeek",
		chunks:  []llm.StreamChunk{textChunk("你好"), textChunk("，"), textChunk("世界")},
	}

	out := StreamText(context.Background(), p, &llm.ChatRequest{}, nil, nil)
	assert.Equal(t, "你好，世界", collect(out))
}

func TestStreamTextFallsBackToCompletion(t *testing.T) {
	p := &fakeProvider{
		name:      "qwen",
		display:   "Qwen",
		streamErr: fmt.Errorf("streaming not supported"),
		completion: &llm.ChatResponse{
			Choices: []llm.ChatChoice{{
				Message: llm.Message{Role: llm.RoleAssistant, Content: "整段回复"},
			}},
		},
	}

	out := StreamText(context.Background(), p, &llm.ChatRequest{}, nil, nil)
	assert.Equal(t, "整段回复", collect(out))
}

func TestStreamTextCompletionFailureProducesErrorText(t *testing.T) {
	p := &fakeProvider{
		name:        "grok",
		display:     "Grok",
		streamErr:   fmt.Errorf("stream refused"),
		completeErr: fmt.Errorf("upstream down"),
	}

	out := StreamText(context.Background(), p, &llm.ChatRequest{}, nil, nil)
	got := collect(out)
	assert.Contains(t, got, "Error from Grok")
	assert.Contains(t, got, "upstream down")
}

func TestStreamTextMidStreamErrorKeepsPartialContent(t *testing.T) {
	p := &fakeProvider{
		name:    "openai",
		display: "ChatGPT",
		chunks: []llm.StreamChunk{
			textChunk("前半段"),
			{Err: &llm.Error{Code: llm.ErrUpstreamError, Message: "connection reset"}},
		},
	}

	out := StreamText(context.Background(), p, &llm.ChatRequest{}, nil, nil)
	got := collect(out)
	assert.True(t, strings.HasPrefix(got, "前半段"))
	assert.Contains(t, got, "[Error: connection reset]")
}

func TestStreamTextChannelAlwaysCloses(t *testing.T) {
	p := &fakeProvider{name: "deepseek", display: "DeepSeek"}

	out := StreamText(context.Background(), p, &llm.ChatRequest{}, nil, nil)

	// 空流也会关闭通道，range 正常退出
	count := 0
	for range out {
		count++
	}
	require.Equal(t, 0, count)
}

func TestStreamTextContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{
		name:    "deepseek",
		display: "DeepSeek",
		chunks:  []llm.StreamChunk{textChunk("a"), textChunk("b")},
	}

	out := StreamText(ctx, p, &llm.ChatRequest{}, nil, nil)
	// 取消后通道最终关闭，不会死锁
	for range out {
	}
}
