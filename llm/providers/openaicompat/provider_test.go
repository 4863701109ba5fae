package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(baseURL string) *Provider {
	return New(Config{
		ProviderName:  "testprov",
		DisplayName:   "TestProv",
		APIKey:        "sk-test",
		BaseURL:       baseURL,
		FallbackModel: "test-model",
		Persona:       "You are a debate participant.",
	}, nil)
}

func TestCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req providers.OpenAICompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		// 人设作为首条 system 消息注入
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "You are a debate participant.", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "回复内容"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "话题", Name: "User"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "回复内容", resp.Choices[0].Message.Content)
	assert.Equal(t, "testprov", resp.Provider)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCompletionSpeakerPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providers.OpenAICompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// 带名称的发言转换为 "[name]: content"
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "[DeepSeek]: 我的观点", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","model":"m","choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleAssistant, Content: "我的观点", Name: "DeepSeek"}},
	})
	require.NoError(t, err)
}

func TestCompletionMapsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	llmErr, ok := err.(*llm.Error)
	require.True(t, ok)
	assert.Equal(t, llm.ErrUnauthorized, llmErr.Code)
	assert.Equal(t, "testprov", llmErr.Provider)
}

func sseBody(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestStreamParsesSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providers.OpenAICompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sseBody(
			`data: {"id":"s1","model":"test-model","choices":[{"delta":{"content":"你"}}]}`,
			``,
			`data: {"id":"s1","model":"test-model","choices":[{"delta":{"content":"好"}}]}`,
			``,
			`data: {"id":"s1","model":"test-model","choices":[{"delta":{},"finish_reason":"stop"}]}`,
			``,
			`data: [DONE]`,
		)))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	chunks, err := p.Stream(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var text strings.Builder
	var finish string
	for c := range chunks {
		require.Nil(t, c.Err)
		text.WriteString(c.Delta.Content)
		if c.FinishReason != "" {
			finish = c.FinishReason
		}
	}
	assert.Equal(t, "你好", text.String())
	assert.Equal(t, "stop", finish)
}

func TestStreamMalformedDataEmitsErrChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sseBody(
			`data: {"id":"s1","choices":[{"delta":{"content":"ok"}}]}`,
			``,
			`data: {not json`,
		)))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	chunks, err := p.Stream(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var sawContent, sawErr bool
	for c := range chunks {
		if c.Err != nil {
			sawErr = true
			assert.Equal(t, llm.ErrUpstreamError, c.Err.Code)
			continue
		}
		if c.Delta.Content == "ok" {
			sawContent = true
		}
	}
	assert.True(t, sawContent)
	assert.True(t, sawErr)
}

func TestStreamHTTPErrorReturnsBeforeChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Stream(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	llmErr, ok := err.(*llm.Error)
	require.True(t, ok)
	assert.Equal(t, llm.ErrRateLimited, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestChooseModelPrecedence(t *testing.T) {
	p := New(Config{
		ProviderName:  "x",
		DefaultModel:  "default-model",
		FallbackModel: "fallback-model",
	}, nil)

	body := p.buildBody(&llm.ChatRequest{Model: "explicit"}, false)
	assert.Equal(t, "explicit", body.Model)

	body = p.buildBody(&llm.ChatRequest{}, false)
	assert.Equal(t, "default-model", body.Model)

	p.Cfg.DefaultModel = ""
	body = p.buildBody(&llm.ChatRequest{}, false)
	assert.Equal(t, "fallback-model", body.Model)
}
