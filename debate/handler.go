package debate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"go.uber.org/zap"
)

// SessionFactory 为每个接入的连接创建独立的编排器。
// 会话记录的生命周期与连接一致，会话之间不共享。
type SessionFactory func() *Orchestrator

// Handler 处理 /ws/debate 的 WebSocket 升级与会话生命周期
type Handler struct {
	hub        *Hub
	newSession SessionFactory
	origins    []string
	logger     *zap.Logger
}

// NewHandler 创建 WebSocket 处理器
func NewHandler(hub *Hub, newSession SessionFactory, origins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		hub:        hub,
		newSession: newSession,
		origins:    origins,
		logger:     logger.With(zap.String("component", "ws_handler")),
	}
}

// ServeHTTP 升级连接，创建会话，然后进入读循环。
// 连接断开时注销并取消其触发的辩论。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}

	conn := NewWSConn(wsConn, h.logger)
	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	orchestrator := h.newSession()

	for {
		data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.logger.Info("client disconnected")
			} else if !errors.Is(err, context.Canceled) {
				h.logger.Warn("read failed, closing connection", zap.Error(err))
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// 协议错误视为会话级故障：尽力通知后断开
			h.logger.Warn("malformed inbound message", zap.Error(err))
			notice := NewTurn(llm.RoleSystem, "System", "消息格式错误，连接即将关闭")
			_ = conn.Send(ctx, mustMarshal(NewMessageEvent(notice)))
			return
		}

		if err := orchestrator.HandleMessage(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			h.logger.Warn("debate aborted", zap.Error(err))
		}
	}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
