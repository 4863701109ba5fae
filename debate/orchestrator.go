package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoofy2009-dotcom/AIDEBATE/config"
	"github.com/hoofy2009-dotcom/AIDEBATE/internal/metrics"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
	"github.com/hoofy2009-dotcom/AIDEBATE/websearch"
	"go.uber.org/zap"
)

// ResolverFunc 按模型名称解析 Provider。
// 解析失败（通常是凭证未配置）时由编排层降级为模拟发言。
type ResolverFunc func(model string) (llm.Provider, error)

// Searcher 联网搜索抽象
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// InboundMessage 客户端发起辩论的入站消息。
// Rounds 用指针区分"未指定"（采用默认轮数）与显式 0（直接总结）。
type InboundMessage struct {
	Content         string   `json:"content"`
	Timestamp       float64  `json:"timestamp,omitempty"`
	Agents          []string `json:"agents,omitempty"`
	Rounds          *int     `json:"rounds,omitempty"`
	Summarizer      string   `json:"summarizer,omitempty"`
	EnableWebSearch bool     `json:"enable_web_search,omitempty"`
}

// Orchestrator 驱动一场辩论：话题广播、可选搜索增强、
// 轮次×发言者的串行推进、流式转发与收尾总结。
// 每个连接持有自己的编排器与会话记录，会话之间互不共享。
type Orchestrator struct {
	hub        *Hub
	transcript *Transcript
	resolver   ResolverFunc
	searcher   Searcher
	cfg        *config.Config
	logger     *zap.Logger
	collector  *metrics.Collector
}

// NewOrchestrator 创建编排器。searcher 与 collector 可为 nil。
func NewOrchestrator(hub *Hub, resolver ResolverFunc, searcher Searcher, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		hub:        hub,
		transcript: NewTranscript(),
		resolver:   resolver,
		searcher:   searcher,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "orchestrator")),
		collector:  collector,
	}
}

// Transcript 返回本会话的记录
func (o *Orchestrator) Transcript() *Transcript {
	return o.transcript
}

// resolveRounds 确定轮数：未指定取默认值，超上限截断，显式 0 保留。
func (o *Orchestrator) resolveRounds(requested *int) int {
	rounds := o.cfg.Debate.DefaultRounds
	if requested != nil {
		rounds = *requested
	}
	if rounds < 0 {
		rounds = 0
	}
	if rounds > o.cfg.Debate.MaxRounds {
		rounds = o.cfg.Debate.MaxRounds
	}
	return rounds
}

// HandleMessage 执行一场完整辩论。
// 流程全程串行，保证所有客户端看到一致的事件顺序。
func (o *Orchestrator) HandleMessage(ctx context.Context, msg InboundMessage) error {
	topic := strings.TrimSpace(msg.Content)
	if topic == "" {
		return fmt.Errorf("empty topic")
	}

	// 用户消息先入历史并回显
	userTurn := NewTurn(llm.RoleUser, "User", topic)
	if msg.Timestamp > 0 {
		userTurn.Timestamp = msg.Timestamp
	}
	o.appendAndBroadcast(ctx, userTurn)

	// 可选的联网搜索增强
	if msg.EnableWebSearch && o.searcher != nil {
		o.runSearch(ctx, topic)
	}

	rounds := o.resolveRounds(msg.Rounds)
	roster := SelectAgents(msg.Agents, o.cfg)

	if o.collector != nil {
		o.collector.DebateStarted()
	}
	o.logger.Info("debate started",
		zap.String("topic", topic),
		zap.Int("rounds", rounds),
		zap.Strings("agents", roster),
	)

	for round := 1; round <= rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_ = o.hub.Broadcast(ctx, NewRoundStartEvent(round, rounds))
		// 首轮不加分隔线；分隔线只广播，不进入喂给模型的历史
		if round > 1 {
			o.broadcastNotice(ctx,
				fmt.Sprintf("━━━━━━━━━━━━━ 第 %d 轮辩论开始 ━━━━━━━━━━━━━", round))
		}

		for _, agent := range roster {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.runAgent(ctx, agent, topic)
		}

		_ = o.hub.Broadcast(ctx, NewRoundEndEvent(round))
		if o.collector != nil {
			o.collector.RoundCompleted()
		}
	}

	_ = o.hub.Broadcast(ctx, NewDebateCompleteEvent(rounds))
	o.broadcastNotice(ctx, fmt.Sprintf("✓ 辩论已完成 (%d 轮)，正在生成总结...", rounds))

	o.runSummary(ctx, msg.Summarizer, topic, rounds)
	return ctx.Err()
}

// runSearch 执行联网搜索并把结果注入会话。
// 搜索失败只产生提示，不中断辩论。
func (o *Orchestrator) runSearch(ctx context.Context, topic string) {
	o.broadcastNotice(ctx, "🌐 正在搜索互联网相关信息...")

	results, err := o.searcher.Search(ctx, topic)
	if err != nil {
		o.logger.Warn("web search failed", zap.Error(err))
		failed := NewTurn(llm.RoleSystem, "System",
			fmt.Sprintf("⚠️ 搜索失败: %v，将基于AI训练数据进行辩论", err))
		o.appendAndBroadcast(ctx, failed)
		return
	}

	// 完整结果只进历史供模型引用，客户端看到条数提示即可
	turn := NewTurn(llm.RoleSystem, "WebSearch", websearch.FormatResults(topic, results))
	o.transcript.Append(turn)

	o.broadcastNotice(ctx,
		fmt.Sprintf("✓ 已搜索到 %d 条相关信息，AI 将基于最新互联网资料进行辩论", len(results)))
}

// runAgent 执行单个发言者的一次发言。
// Provider 解析失败时降级为模拟发言，名单位置不留空。
func (o *Orchestrator) runAgent(ctx context.Context, agent, topic string) {
	p, err := o.resolver(agent)
	if err != nil {
		o.logger.Warn("provider unavailable, simulating turn",
			zap.String("agent", agent),
			zap.Error(err),
		)
		_ = o.hub.Broadcast(ctx, NewTypingEvent(agent, false))

		simulated := NewTurn(llm.RoleAssistant, agent,
			fmt.Sprintf("[%s (Simulation)]: I see your point regarding '%s'. However, considering the data... (Error: config API Key to see real response)", agent, topic))
		o.appendAndBroadcast(ctx, simulated)

		if o.collector != nil {
			o.collector.AgentTurn(agent, "simulated")
		}
		return
	}

	name := p.DisplayName()
	_ = o.hub.Broadcast(ctx, NewTypingEvent(name, true))

	// 空内容占位 Turn 先行广播，客户端以它为锚点承接后续增量
	turn := NewTurn(llm.RoleAssistant, name, "")
	_ = o.hub.Broadcast(ctx, NewStreamStartEvent(turn))

	req := &llm.ChatRequest{
		Model:    agent,
		Messages: o.transcript.Messages(),
	}

	var full strings.Builder
	for fragment := range StreamText(ctx, p, req, o.logger, o.collector) {
		full.WriteString(fragment)
		_ = o.hub.Broadcast(ctx, NewStreamDeltaEvent(name, fragment))
	}

	_ = o.hub.Broadcast(ctx, NewTypingEvent(name, false))

	// 完整发言只入历史；客户端已通过流式事件拼出全文
	turn.Content = full.String()
	o.transcript.Append(turn)
	_ = o.hub.Broadcast(ctx, NewStreamEndEvent(name))

	if o.collector != nil {
		o.collector.AgentTurn(agent, "live")
	}
}

// runSummary 生成收尾总结。
// 总结者解析失败时输出失败提示，辩论本身已完成不受影响。
func (o *Orchestrator) runSummary(ctx context.Context, summarizer, topic string, rounds int) {
	model := summarizer
	if model == "" {
		model = o.cfg.Debate.DefaultSummarizer
	}

	p, err := o.resolver(model)
	if err != nil {
		o.logger.Warn("summarizer unavailable",
			zap.String("model", model),
			zap.Error(err),
		)
		o.broadcastNotice(ctx, fmt.Sprintf("总结生成失败: %v", err))
		return
	}

	name := p.DisplayName()
	o.broadcastNotice(ctx,
		fmt.Sprintf("━━━━━━━━━━━━━ 📊 辩论总结 (%s) ━━━━━━━━━━━━━", name))

	prompt := NewTurn(llm.RoleUser, "System",
		fmt.Sprintf("请作为辩论总结者，对以上 %d 轮关于「%s」的辩论进行全面总结。要求：\n"+
			"1. 概括各方的核心观点\n"+
			"2. 分析争议焦点\n"+
			"3. 给出综合性结论\n"+
			"4. 字数控制在300-500字", rounds, topic))
	o.transcript.Append(prompt)

	speaker := name + " (总结)"
	turn := NewTurn(llm.RoleAssistant, speaker, "")
	_ = o.hub.Broadcast(ctx, NewStreamStartEvent(turn))

	req := &llm.ChatRequest{
		Model:    model,
		Messages: o.transcript.Messages(),
	}

	var full strings.Builder
	for fragment := range StreamText(ctx, p, req, o.logger, o.collector) {
		full.WriteString(fragment)
		_ = o.hub.Broadcast(ctx, NewStreamDeltaEvent(speaker, fragment))
	}

	turn.Content = full.String()
	o.transcript.Append(turn)
	_ = o.hub.Broadcast(ctx, NewStreamEndEvent(speaker))

	o.broadcastNotice(ctx, "✅ 辩论与总结全部完成！")
}

// appendAndBroadcast 把 Turn 写入历史并以 message 事件广播
func (o *Orchestrator) appendAndBroadcast(ctx context.Context, turn Turn) {
	o.transcript.Append(turn)
	_ = o.hub.Broadcast(ctx, NewMessageEvent(turn))
}

// broadcastNotice 只广播装饰性/状态性的系统消息，不写入历史，
// 避免污染喂给每个 Provider 的上下文。
func (o *Orchestrator) broadcastNotice(ctx context.Context, content string) {
	turn := NewTurn(llm.RoleSystem, "System", content)
	_ = o.hub.Broadcast(ctx, NewMessageEvent(turn))
}
