package debate

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/hoofy2009-dotcom/AIDEBATE/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, resolver ResolverFunc) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	hub := NewHub(nil, nil)
	newSession := func() *Orchestrator {
		return NewOrchestrator(hub, resolver, nil, cfg, nil, nil)
	}
	handler := NewHandler(hub, newSession, nil, nil)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func runDebate(t *testing.T, ctx context.Context, conn *websocket.Conn, topic string) []probe {
	t.Helper()

	req, err := json.Marshal(InboundMessage{
		Content: topic,
		Agents:  []string{"a-model"},
		Rounds:  intPtr(1),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, req))

	var events []probe
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)

		var p probe
		require.NoError(t, json.Unmarshal(data, &p))
		events = append(events, p)

		if p.Type == EventMessage && p.Data != nil &&
			strings.Contains(p.Data.Content, "✅ 辩论与总结全部完成") {
			return events
		}
	}
}

func TestHandlerEndToEndDebate(t *testing.T) {
	resolver := liveResolver(map[string]string{
		"a-model":       "Alpha",
		"deepseek-chat": "DeepSeek",
	}, "观点")
	srv := newTestServer(t, resolver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	events := runDebate(t, ctx, conn, "远程办公的利与弊")
	types := eventTypes(events)

	assert.Contains(t, types, EventRoundStart)
	assert.Contains(t, types, EventStreamDelta)
	assert.Contains(t, types, EventDebateComplete)
}

func TestHandlerMalformedMessageClosesSession(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	// 先收到一条格式错误提示，随后连接被服务端关闭
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var p probe
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, EventMessage, p.Type)

	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
}

func TestHandlerLateJoinerStartsWithEmptySession(t *testing.T) {
	resolver := liveResolver(map[string]string{
		"a-model":       "Alpha",
		"deepseek-chat": "DeepSeek",
	}, "观点")
	srv := newTestServer(t, resolver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 第一个连接完成一场辩论后断开
	first, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	runDebate(t, ctx, first, "历史话题")
	require.NoError(t, first.Close(websocket.StatusNormalClosure, "done"))

	// 后连入的客户端拿到全新会话：收到的第一条事件是自己话题的回显，
	// 而不是上一场辩论的历史回放
	second, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer second.Close(websocket.StatusNormalClosure, "done")

	events := runDebate(t, ctx, second, "新的话题")
	require.NotEmpty(t, events)
	head := events[0]
	assert.Equal(t, EventMessage, head.Type)
	require.NotNil(t, head.Data)
	assert.Equal(t, "新的话题", head.Data.Content)
	assert.Contains(t, eventTypes(events), EventDebateComplete)
}
