package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	LLM          LLMConfig
	Contentstack ContentstackConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LLMConfig holds text-generation provider configuration. Groq is tried
// first; OpenAI is the fallback.
type LLMConfig struct {
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	OpenAIAPIKey string
	OpenAIModel  string
}

// ContentstackConfig holds CMS and MCP tool configuration
type ContentstackConfig struct {
	APIKey          string
	DeliveryToken   string
	ManagementToken string
	Environment     string
	LaunchProjectID string
	MCPCommand      string
	MCPArgs         []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Validation holds the result of a configuration check. Issues block
// startup; warnings only disable optional features.
type Validation struct {
	Issues   []string
	Warnings []string
}

// Valid reports whether the configuration has no blocking issues.
func (v *Validation) Valid() bool {
	return len(v.Issues) == 0
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8001),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			GroqModel:    getEnv("GROQ_MODEL", "llama3-8b-8192"),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-5"),
		},
		Contentstack: ContentstackConfig{
			APIKey:          getEnv("CONTENTSTACK_API_KEY", ""),
			DeliveryToken:   getEnv("CONTENTSTACK_DELIVERY_TOKEN", ""),
			ManagementToken: getEnv("CONTENTSTACK_MANAGEMENT_TOKEN", ""),
			Environment:     getEnv("CONTENTSTACK_ENVIRONMENT", "development"),
			LaunchProjectID: getEnv("CONTENTSTACK_LAUNCH_PROJECT_ID", ""),
			MCPCommand:      getEnv("CONTENTSTACK_MCP_COMMAND", "npx"),
			MCPArgs:         getEnvAsSlice("CONTENTSTACK_MCP_ARGS", []string{"-y", "@contentstack/mcp"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "contentiq-services"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// Validate checks the configuration and reports blocking issues and
// feature-disabling warnings.
func (c *Config) Validate() *Validation {
	v := &Validation{}

	if c.Contentstack.APIKey == "" {
		v.Issues = append(v.Issues, "CONTENTSTACK_API_KEY is required")
	}
	if c.Contentstack.DeliveryToken == "" {
		v.Issues = append(v.Issues, "CONTENTSTACK_DELIVERY_TOKEN is required")
	}
	if c.LLM.GroqAPIKey == "" && c.LLM.OpenAIAPIKey == "" {
		v.Issues = append(v.Issues, "Either GROQ_API_KEY or OPENAI_API_KEY is required")
	}

	if c.Contentstack.ManagementToken == "" {
		v.Warnings = append(v.Warnings, "CONTENTSTACK_MANAGEMENT_TOKEN not set - draft creation disabled")
	}
	if c.Contentstack.LaunchProjectID == "" {
		v.Warnings = append(v.Warnings, "CONTENTSTACK_LAUNCH_PROJECT_ID not set - deployment features disabled")
	}

	return v
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
