package debate

import (
	"github.com/hoofy2009-dotcom/AIDEBATE/config"
)

// SelectAgents 确定本场辩论的参与者名单。
// 客户端显式指定名单时原样采用（即使对应后端未配置，
// 由模拟发言降级兜底）；未指定时按配置凭证自动探测，
// 全部不可用时回退到最小名单，保证辩论总能进行。
func SelectAgents(requested []string, cfg *config.Config) []string {
	if len(requested) > 0 {
		return requested
	}

	var roster []string
	p := cfg.Providers

	if p.DeepSeek.Available() {
		roster = append(roster, "deepseek-chat")
	}
	if p.Qwen.Available() {
		roster = append(roster, "qwen-turbo")
	}
	if p.Doubao.Available() {
		roster = append(roster, "doubao-pro")
	}
	if p.OpenAI.Available() {
		roster = append(roster, "gpt-4o")
	}
	if p.Claude.Available() {
		roster = append(roster, "claude-3-5-sonnet-20240620")
	}
	if p.Grok.Available() {
		roster = append(roster, "grok-beta")
	}
	if p.Gemini.Available() {
		roster = append(roster, "gemini-2.0-flash")
	}

	if len(roster) == 0 {
		// 没有任何可用凭证时的兜底名单
		roster = []string{"deepseek-chat"}
	}
	return roster
}
