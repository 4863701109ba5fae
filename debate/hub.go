package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hoofy2009-dotcom/AIDEBATE/internal/metrics"
	"go.uber.org/zap"
)

// Conn 是 Hub 管理的下行连接抽象
type Conn interface {
	// Send 发送一条序列化后的事件
	Send(ctx context.Context, data []byte) error
	// Close 关闭连接
	Close() error
}

// Hub 管理全部活跃连接并向其广播事件。
// 广播整体串行化：同一事件先于后续事件到达每个客户端，
// 保证所有客户端看到相同的事件顺序。
type Hub struct {
	mu        sync.Mutex
	conns     map[Conn]struct{}
	logger    *zap.Logger
	collector *metrics.Collector
}

// NewHub 创建连接集线器。collector 可为 nil。
func NewHub(logger *zap.Logger, collector *metrics.Collector) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		conns:     make(map[Conn]struct{}),
		logger:    logger.With(zap.String("component", "hub")),
		collector: collector,
	}
}

// Register 注册一条新连接
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()

	if h.collector != nil {
		h.collector.ConnectionOpened()
	}
	h.logger.Info("connection registered", zap.Int("active", n))
}

// Unregister 移除连接并关闭它
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	if ok {
		delete(h.conns, c)
	}
	n := len(h.conns)
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = c.Close()
	if h.collector != nil {
		h.collector.ConnectionClosed()
	}
	h.logger.Info("connection unregistered", zap.Int("active", n))
}

// Len 返回当前活跃连接数
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast 将事件序列化后发给所有活跃连接。
// 单个连接发送失败只影响该连接：记录日志、摘除连接，广播继续。
func (h *Hub) Broadcast(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if h.collector != nil {
		h.collector.EventBroadcast(eventType(event))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var failed []Conn
	for c := range h.conns {
		if err := c.Send(ctx, data); err != nil {
			h.logger.Warn("broadcast send failed, dropping connection", zap.Error(err))
			if h.collector != nil {
				h.collector.BroadcastFailure()
			}
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		delete(h.conns, c)
		_ = c.Close()
		if h.collector != nil {
			h.collector.ConnectionClosed()
		}
	}
	return nil
}
