package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Suggest  SuggestConfig
	Ingest   IngestConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	OpenAIKey       string
	AnthropicKey    string
	OllamaURL       string
	DefaultProvider string
	DefaultModel    string
	EmbeddingModel  string
	MaxRetries      int
}

type SuggestConfig struct {
	TopK               int
	Concurrency        int
	UpstreamTimeout    time.Duration
	BaselineConfidence int
	ReviewThreshold    int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	topK, err := getEnvInt("SUGGEST_TOP_K", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGEST_TOP_K: %w", err)
	}

	concurrency, err := getEnvInt("SUGGEST_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGEST_CONCURRENCY: %w", err)
	}

	timeoutSec, err := getEnvInt("SUGGEST_UPSTREAM_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGEST_UPSTREAM_TIMEOUT_SECONDS: %w", err)
	}

	baseline, err := getEnvInt("SUGGEST_BASELINE_CONFIDENCE", 90)
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGEST_BASELINE_CONFIDENCE: %w", err)
	}

	threshold, err := getEnvInt("REVIEW_THRESHOLD", 80)
	if err != nil {
		return nil, fmt.Errorf("invalid REVIEW_THRESHOLD: %w", err)
	}

	chunkSize, err := getEnvInt("INGEST_CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_CHUNK_SIZE: %w", err)
	}

	chunkOverlap, err := getEnvInt("INGEST_CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_CHUNK_OVERLAP: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:       getEnv("OLLAMA_URL", ""),
			DefaultProvider: getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:    getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			EmbeddingModel:  getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			MaxRetries:      maxRetries,
		},
		Suggest: SuggestConfig{
			TopK:               topK,
			Concurrency:        concurrency,
			UpstreamTimeout:    time.Duration(timeoutSec) * time.Second,
			BaselineConfidence: baseline,
			ReviewThreshold:    threshold,
		},
		Ingest: IngestConfig{
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	if c.LLM.OpenAIKey == "" && c.LLM.AnthropicKey == "" && c.LLM.OllamaURL == "" {
		return fmt.Errorf("no LLM provider configured: set OPENAI_API_KEY, ANTHROPIC_API_KEY or OLLAMA_URL")
	}
	if c.Suggest.TopK <= 0 {
		return fmt.Errorf("SUGGEST_TOP_K must be positive")
	}
	if c.Suggest.Concurrency <= 0 {
		return fmt.Errorf("SUGGEST_CONCURRENCY must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
