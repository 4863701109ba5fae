package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hoofy2009-dotcom/AIDEBATE/internal/tlsutil"
	"go.uber.org/zap"
)

// Result 单条搜索结果
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Searcher 通过 DuckDuckGo Instant Answer API 执行联网搜索。
// 免密钥、免配置，适合为辩论话题补充背景信息。
type Searcher struct {
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// Option 配置 Searcher
type Option func(*Searcher)

// WithBaseURL 覆盖 API 地址（测试用）
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = u }
}

// WithMaxResults 设置返回结果条数上限
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithHTTPClient 覆盖 HTTP 客户端（测试用）
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) { s.client = c }
}

// NewSearcher 创建搜索器
func NewSearcher(logger *zap.Logger, opts ...Option) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Searcher{
		baseURL:    "https://api.duckduckgo.com",
		maxResults: 5,
		client:     tlsutil.SecureHTTPClient(10 * time.Second),
		logger:     logger.With(zap.String("component", "websearch")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
	// 分组话题嵌套在 Topics 里
	Topics []ddgTopic `json:"Topics,omitempty"`
}

type ddgResponse struct {
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// Search 执行搜索并返回结果列表。
// 网络失败或解析失败时返回错误，由调用方决定降级策略。
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		strings.TrimRight(s.baseURL, "/"), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var ddg ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var results []Result

	// 摘要优先：Instant Answer 的 Abstract 是质量最高的内容
	if ddg.AbstractText != "" {
		results = append(results, Result{
			Title:   ddg.Heading,
			Snippet: ddg.AbstractText,
			URL:     ddg.AbstractURL,
		})
	}

	results = appendTopics(results, ddg.RelatedTopics, s.maxResults)

	s.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func appendTopics(results []Result, topics []ddgTopic, limit int) []Result {
	for _, t := range topics {
		if len(results) >= limit {
			break
		}
		if len(t.Topics) > 0 {
			results = appendTopics(results, t.Topics, limit)
			continue
		}
		if t.Text == "" {
			continue
		}
		results = append(results, Result{
			Title:   firstSentence(t.Text),
			Snippet: t.Text,
			URL:     t.FirstURL,
		})
	}
	return results
}

func firstSentence(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	// 按 rune 截断，中文摘要不能从多字节序列中间切开
	const maxTitle = 60
	if runes := []rune(text); len(runes) > maxTitle {
		return string(runes[:maxTitle])
	}
	return text
}

// FormatResults 将搜索结果格式化为注入会话的文本块。
// 空结果返回提示文案而非空串，让参与者知道搜索已执行。
func FormatResults(query string, results []Result) string {
	var b strings.Builder
	b.WriteString("【互联网搜索结果】\n")
	b.WriteString(fmt.Sprintf("搜索关键词: %s\n\n", query))

	if len(results) == 0 {
		b.WriteString("未找到相关信息。\n")
		return b.String()
	}

	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Title))
		if r.Snippet != "" && r.Snippet != r.Title {
			b.WriteString(fmt.Sprintf("   %s\n", r.Snippet))
		}
		if r.URL != "" {
			b.WriteString(fmt.Sprintf("   来源: %s\n", r.URL))
		}
	}
	return b.String()
}
