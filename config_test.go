package chatpod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHATPOD_DEFAULT_MODEL", "")
	t.Setenv("CHATPOD_ALLOWED_USERS", "alice, bob ,")

	cfg := LoadConfig()
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "", cfg.DefaultModel, "explicit empty value wins over the fallback")
	assert.Equal(t, []string{"alice", "bob"}, cfg.AllowedUsers)
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, defaultModelName, cfg.DefaultModel)
	assert.Equal(t, premiumModelName, cfg.PremiumModel)
}

func TestAllowed(t *testing.T) {
	open := &Config{}
	assert.True(t, open.Allowed("anyone"), "an empty allow-list admits everyone")

	gated := &Config{AllowedUsers: []string{"alice", "bob"}}
	assert.True(t, gated.Allowed("alice"))
	assert.False(t, gated.Allowed("mallory"))
}
