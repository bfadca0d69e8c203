// Package config loads the orchestrator's typed settings record.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the explicit settings record for every environment-variable
// knob the service reads. Unknown keys are rejected at startup instead of
// being silently ignored.
type Config struct {
	EmbeddingDim             int     `mapstructure:"EMBEDDING_DIM"`
	EmbeddingSource          string  `mapstructure:"EMBEDDING_SOURCE"`
	EmbeddingModel           string  `mapstructure:"EMBEDDING_MODEL"`
	ChatModel                string  `mapstructure:"CHAT_MODEL"`
	ChatTemperature          float64 `mapstructure:"CHAT_TEMPERATURE"`
	SQLTimeoutMs             int     `mapstructure:"SQL_TIMEOUT_MS"`
	SQLRowCap                int     `mapstructure:"SQL_ROW_CAP"`
	ConversationHistoryTurns int     `mapstructure:"CONVERSATION_HISTORY_TURNS"`
	RequestDeadlineMs        int     `mapstructure:"REQUEST_DEADLINE_MS"`
	QualityThreshold         float64 `mapstructure:"QUALITY_THRESHOLD"`
	RetrievalOversample      int     `mapstructure:"RETRIEVAL_OVERSAMPLE"`

	DatabaseDSN      string `mapstructure:"DATABASE_DSN"`
	VectorDriver     string `mapstructure:"VECTOR_DRIVER"` // "pgvector" | "qdrant"
	QdrantAddr       string `mapstructure:"QDRANT_ADDR"`
	QdrantCollection string `mapstructure:"QDRANT_COLLECTION"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	EmbeddingBaseURL string `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey  string `mapstructure:"EMBEDDING_API_KEY"`
	ChatBaseURL      string `mapstructure:"CHAT_BASE_URL"`
	ChatAPIKey       string `mapstructure:"CHAT_API_KEY"`
	ChatSource       string `mapstructure:"CHAT_SOURCE"` // "ollama" | "openai"
	OTLPEndpoint     string `mapstructure:"OTLP_ENDPOINT"`
	HTTPAddr         string `mapstructure:"HTTP_ADDR"`

	RerankModel   string `mapstructure:"RERANK_MODEL"`
	RerankBaseURL string `mapstructure:"RERANK_BASE_URL"`
	RerankAPIKey  string `mapstructure:"RERANK_API_KEY"`
}

// knownKeys is the whitelist used to reject unrecognized configuration
// entries at startup.
var knownKeys = []string{
	"EMBEDDING_DIM", "EMBEDDING_SOURCE", "EMBEDDING_MODEL", "CHAT_MODEL", "CHAT_TEMPERATURE",
	"SQL_TIMEOUT_MS", "SQL_ROW_CAP", "CONVERSATION_HISTORY_TURNS",
	"REQUEST_DEADLINE_MS", "QUALITY_THRESHOLD", "RETRIEVAL_OVERSAMPLE",
	"DATABASE_DSN", "VECTOR_DRIVER", "QDRANT_ADDR", "QDRANT_COLLECTION",
	"REDIS_ADDR", "EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "CHAT_BASE_URL",
	"CHAT_API_KEY", "CHAT_SOURCE", "OTLP_ENDPOINT", "HTTP_ADDR",
	"RERANK_MODEL", "RERANK_BASE_URL", "RERANK_API_KEY",
}

func defaults(v *viper.Viper) {
	v.SetDefault("EMBEDDING_DIM", 768)
	v.SetDefault("CHAT_TEMPERATURE", 0.1)
	v.SetDefault("SQL_TIMEOUT_MS", 2000)
	v.SetDefault("SQL_ROW_CAP", 1000)
	v.SetDefault("CONVERSATION_HISTORY_TURNS", 5)
	v.SetDefault("REQUEST_DEADLINE_MS", 60000)
	v.SetDefault("QUALITY_THRESHOLD", 0.5)
	v.SetDefault("RETRIEVAL_OVERSAMPLE", 3)
	v.SetDefault("VECTOR_DRIVER", "pgvector")
	v.SetDefault("EMBEDDING_SOURCE", "ollama")
	v.SetDefault("CHAT_SOURCE", "ollama")
	v.SetDefault("HTTP_ADDR", ":8080")
}

// Load reads configuration from an optional file at path (YAML), layered
// under environment variable overrides, and validates it against the
// documented key set.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	defaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := rejectUnknownKeys(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func rejectUnknownKeys(v *viper.Viper) error {
	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[k] = true
	}
	for _, k := range v.AllKeys() {
		if !known[strings.ToUpper(k)] {
			return fmt.Errorf("unknown configuration key: %s", k)
		}
	}
	return nil
}
