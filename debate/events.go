package debate

// WebSocket 下行事件类型。客户端依赖 type 字段分发处理。
const (
	EventMessage        = "message"
	EventTyping         = "typing"
	EventStreamStart    = "stream_start"
	EventStreamDelta    = "stream_delta"
	EventStreamEnd      = "stream_end"
	EventRoundStart     = "round_start"
	EventRoundEnd       = "round_end"
	EventDebateComplete = "debate_complete"
)

// MessageEvent 一条完整发言入历史后的广播
type MessageEvent struct {
	Type string `json:"type"`
	Data Turn   `json:"data"`
}

// NewMessageEvent 创建 message 事件
func NewMessageEvent(turn Turn) MessageEvent {
	return MessageEvent{Type: EventMessage, Data: turn}
}

// TypingEvent 发言者"正在输入"状态切换
type TypingEvent struct {
	Type   string `json:"type"`
	Agent  string `json:"agent"`
	Status bool   `json:"status"`
}

// NewTypingEvent 创建 typing 事件
func NewTypingEvent(agent string, status bool) TypingEvent {
	return TypingEvent{Type: EventTyping, Agent: agent, Status: status}
}

// StreamStartEvent 某发言者的流式输出开始。
// Data 是空内容的占位 Turn，客户端以它为锚点承接后续增量。
type StreamStartEvent struct {
	Type string `json:"type"`
	Data Turn   `json:"data"`
}

// NewStreamStartEvent 创建 stream_start 事件
func NewStreamStartEvent(turn Turn) StreamStartEvent {
	return StreamStartEvent{Type: EventStreamStart, Data: turn}
}

// StreamDeltaEvent 流式输出的增量片段
type StreamDeltaEvent struct {
	Type  string `json:"type"`
	Agent string `json:"agent"`
	Delta string `json:"delta"`
}

// NewStreamDeltaEvent 创建 stream_delta 事件
func NewStreamDeltaEvent(agent, delta string) StreamDeltaEvent {
	return StreamDeltaEvent{Type: EventStreamDelta, Agent: agent, Delta: delta}
}

// StreamEndEvent 某发言者的流式输出结束
type StreamEndEvent struct {
	Type  string `json:"type"`
	Agent string `json:"agent"`
}

// NewStreamEndEvent 创建 stream_end 事件
func NewStreamEndEvent(agent string) StreamEndEvent {
	return StreamEndEvent{Type: EventStreamEnd, Agent: agent}
}

// RoundStartEvent 一轮辩论开始
type RoundStartEvent struct {
	Type        string `json:"type"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
}

// NewRoundStartEvent 创建 round_start 事件
func NewRoundStartEvent(round, total int) RoundStartEvent {
	return RoundStartEvent{Type: EventRoundStart, Round: round, TotalRounds: total}
}

// RoundEndEvent 一轮辩论结束
type RoundEndEvent struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
}

// NewRoundEndEvent 创建 round_end 事件
func NewRoundEndEvent(round int) RoundEndEvent {
	return RoundEndEvent{Type: EventRoundEnd, Round: round}
}

// DebateCompleteEvent 全部轮次执行完毕。
// TotalRounds 不加 omitempty：0 轮也要如实上报。
type DebateCompleteEvent struct {
	Type        string `json:"type"`
	TotalRounds int    `json:"total_rounds"`
}

// NewDebateCompleteEvent 创建 debate_complete 事件
func NewDebateCompleteEvent(total int) DebateCompleteEvent {
	return DebateCompleteEvent{Type: EventDebateComplete, TotalRounds: total}
}

// eventType 提取事件的 type 字段，用于指标标签
func eventType(event any) string {
	switch e := event.(type) {
	case MessageEvent:
		return e.Type
	case TypingEvent:
		return e.Type
	case StreamStartEvent:
		return e.Type
	case StreamDeltaEvent:
		return e.Type
	case StreamEndEvent:
		return e.Type
	case RoundStartEvent:
		return e.Type
	case RoundEndEvent:
		return e.Type
	case DebateCompleteEvent:
		return e.Type
	default:
		return "unknown"
	}
}
