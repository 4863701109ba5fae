package doubao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingEndpointID(t *testing.T) {
	p := NewDoubaoProvider(providers.DoubaoConfig{
		BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-test"},
	}, nil)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{Model: "doubao-pro"})
	require.Error(t, err)

	llmErr, ok := err.(*llm.Error)
	require.True(t, ok)
	assert.Equal(t, llm.ErrProviderUnavailable, llmErr.Code)

	_, err = p.Stream(context.Background(), &llm.ChatRequest{Model: "doubao-pro"})
	assert.Error(t, err)
}

func TestEndpointIDReplacesModelLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req providers.OpenAICompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// 上游收到的是接入点 ID，而非名单标签
		assert.Equal(t, "ep-20240101-abcd", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","model":"ep-20240101-abcd","choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewDoubaoProvider(providers.DoubaoConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  "sk-test",
			BaseURL: srv.URL,
		},
		EndpointID: "ep-20240101-abcd",
	}, nil)

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Model:    "doubao-pro",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "话题"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
}
