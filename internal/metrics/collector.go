// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// WebSocket 指标
	wsConnectionsActive prometheus.Gauge
	wsEventsTotal       *prometheus.CounterVec
	wsBroadcastFailures prometheus.Counter

	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	// 辩论指标
	debatesTotal      prometheus.Counter
	debateRoundsTotal prometheus.Counter
	agentTurnsTotal   *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器。
// reg 为 nil 时注册到默认 Registry；测试可传入独立 Registry 避免冲突。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// WebSocket 指标
	c.wsConnectionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections_active",
		Help:      "Number of active WebSocket connections",
	})

	c.wsEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_total",
			Help:      "Total number of WebSocket events broadcast",
		},
		[]string{"type"},
	)

	c.wsBroadcastFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ws_broadcast_failures_total",
		Help:      "Total number of failed WebSocket sends",
	})

	// LLM 指标
	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// 辩论指标
	c.debatesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debates_total",
		Help:      "Total number of debates started",
	})

	c.debateRoundsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debate_rounds_total",
		Help:      "Total number of debate rounds executed",
	})

	c.agentTurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_turns_total",
			Help:      "Total number of agent turns",
		},
		[]string{"agent", "mode"},
	)

	return c
}

// ConnectionOpened 记录连接建立
func (c *Collector) ConnectionOpened() {
	c.wsConnectionsActive.Inc()
}

// ConnectionClosed 记录连接关闭
func (c *Collector) ConnectionClosed() {
	c.wsConnectionsActive.Dec()
}

// EventBroadcast 记录事件广播
func (c *Collector) EventBroadcast(eventType string) {
	c.wsEventsTotal.WithLabelValues(eventType).Inc()
}

// BroadcastFailure 记录发送失败
func (c *Collector) BroadcastFailure() {
	c.wsBroadcastFailures.Inc()
}

// LLMRequest 记录一次 LLM 请求
func (c *Collector) LLMRequest(provider, status string, duration time.Duration) {
	c.llmRequestsTotal.WithLabelValues(provider, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// DebateStarted 记录辩论开始
func (c *Collector) DebateStarted() {
	c.debatesTotal.Inc()
}

// RoundCompleted 记录一轮辩论完成
func (c *Collector) RoundCompleted() {
	c.debateRoundsTotal.Inc()
}

// AgentTurn 记录一次发言；mode 为 live 或 simulated
func (c *Collector) AgentTurn(agent, mode string) {
	c.agentTurnsTotal.WithLabelValues(agent, mode).Inc()
}
