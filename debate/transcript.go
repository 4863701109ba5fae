package debate

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm"
)

// Turn 会话记录中的一条发言
type Turn struct {
	ID        string   `json:"id"`
	Role      llm.Role `json:"role"`
	Name      string   `json:"name"`
	Content   string   `json:"content"`
	Timestamp float64  `json:"timestamp"` // Unix 秒，小数部分为亚秒精度
}

// NewTurn 创建一条发言记录，自动分配 ID 和时间戳
func NewTurn(role llm.Role, name, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Name:      name,
		Content:   content,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
}

// Transcript 辩论的共享会话记录。
// 所有参与者读取同一份记录构造上下文，因此发言按追加顺序全局有序。
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewTranscript 创建空会话记录
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append 追加一条发言
func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Snapshot 返回当前记录的副本
func (t *Transcript) Snapshot() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len 返回记录条数
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Messages 将会话记录转换为发往 LLM 的消息列表
func (t *Transcript) Messages() []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]llm.Message, 0, len(t.turns))
	for _, turn := range t.turns {
		out = append(out, llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
			Name:    turn.Name,
		})
	}
	return out
}
