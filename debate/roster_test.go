package debate

import (
	"testing"

	"github.com/hoofy2009-dotcom/AIDEBATE/config"
	"github.com/stretchr/testify/assert"
)

func TestSelectAgentsExplicitRosterWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.DeepSeek.APIKey = "sk-real"

	roster := SelectAgents([]string{"gpt-4o", "claude-3-opus"}, cfg)
	assert.Equal(t, []string{"gpt-4o", "claude-3-opus"}, roster)
}

func TestSelectAgentsProbesCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.DeepSeek.APIKey = "sk-deepseek"
	cfg.Providers.Qwen.APIKey = "sk-qwen"
	cfg.Providers.OpenAI.APIKey = "your_openai_api_key_here" // 占位符不算可用

	roster := SelectAgents(nil, cfg)
	assert.Equal(t, []string{"deepseek-chat", "qwen-turbo"}, roster)
}

func TestSelectAgentsFallbackRoster(t *testing.T) {
	cfg := config.DefaultConfig()

	roster := SelectAgents(nil, cfg)
	assert.Equal(t, []string{"deepseek-chat"}, roster)
}
