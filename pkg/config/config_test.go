package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_RedisConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("REDIS_HOST", "cache.internal")
	os.Setenv("REDIS_PORT", "6380")
	defer func() {
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("REDIS_PORT")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.RedisAddr())
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("REDIS_HOST")
	os.Unsetenv("REDIS_PORT")
	os.Unsetenv("GROQ_MODEL")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.GroqModel)
	assert.Equal(t, []string{"-y", "@contentstack/mcp"}, cfg.Contentstack.MCPArgs)
}

func TestValidate_MissingRequired(t *testing.T) {
	os.Unsetenv("CONTENTSTACK_API_KEY")
	os.Unsetenv("CONTENTSTACK_DELIVERY_TOKEN")
	os.Unsetenv("GROQ_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := Load()
	assert.NoError(t, err)

	v := cfg.Validate()
	assert.False(t, v.Valid())
	assert.Contains(t, v.Issues, "CONTENTSTACK_API_KEY is required")
	assert.Contains(t, v.Issues, "Either GROQ_API_KEY or OPENAI_API_KEY is required")
}

func TestValidate_WarningsOnly(t *testing.T) {
	os.Setenv("CONTENTSTACK_API_KEY", "key")
	os.Setenv("CONTENTSTACK_DELIVERY_TOKEN", "token")
	os.Setenv("GROQ_API_KEY", "gk")
	os.Unsetenv("CONTENTSTACK_MANAGEMENT_TOKEN")
	defer func() {
		os.Unsetenv("CONTENTSTACK_API_KEY")
		os.Unsetenv("CONTENTSTACK_DELIVERY_TOKEN")
		os.Unsetenv("GROQ_API_KEY")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	v := cfg.Validate()
	assert.True(t, v.Valid())
	assert.NotEmpty(t, v.Warnings)
}
