package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParsesInstantAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"AbstractText": "Go is a statically typed programming language.",
			"AbstractURL": "https://go.dev",
			"Heading": "Go (programming language)",
			"RelatedTopics": [
				{"Text": "Goroutine - A lightweight thread.", "FirstURL": "https://example.com/goroutine"},
				{"Topics": [{"Text": "Channels - Typed conduits.", "FirstURL": "https://example.com/chan"}]}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSearcher(nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	results, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Go (programming language)", results[0].Title)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.Equal(t, "Goroutine", results[1].Title)
	assert.Equal(t, "Channels", results[2].Title)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"RelatedTopics": [
				{"Text": "a - 1", "FirstURL": "u1"},
				{"Text": "b - 2", "FirstURL": "u2"},
				{"Text": "c - 3", "FirstURL": "u3"}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSearcher(nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithMaxResults(2))
	results, err := s.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSearcher(nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := s.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestFirstSentenceTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("辩", 80)
	title := firstSentence(long)

	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, strings.Repeat("辩", 60), title)

	// " - " 之前的部分优先作为标题
	assert.Equal(t, "量子计算", firstSentence("量子计算 - 基于量子力学的计算模型"))
}

func TestFormatResults(t *testing.T) {
	out := FormatResults("气候变化", []Result{
		{Title: "IPCC Report", Snippet: "Latest climate findings.", URL: "https://ipcc.ch"},
	})
	assert.Contains(t, out, "【互联网搜索结果】")
	assert.Contains(t, out, "搜索关键词: 气候变化")
	assert.Contains(t, out, "1. IPCC Report")
	assert.Contains(t, out, "来源: https://ipcc.ch")
}

func TestFormatResultsEmpty(t *testing.T) {
	out := FormatResults("冷门话题", nil)
	assert.Contains(t, out, "未找到相关信息。")
}
