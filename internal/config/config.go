package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	RAG     RAGConfig
	Session SessionConfig
	TTS     TTSConfig
	CRM     CRMConfig
	Redis   RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	RateLimit    float64 // requests per second per IP
	RateBurst    int
}

// LLMConfig holds Gemini model settings.
type LLMConfig struct {
	APIKey        string //nolint:gosec // G117: API key config
	Model         string
	EmbedModel    string
	Timeout       time.Duration
	HistoryWindow int // max turns of transcript fed as chat context
}

// RAGConfig holds retrieval index settings.
type RAGConfig struct {
	SnapshotPath string
	Threshold    float64 // minimum relevance score to inject a passage
	TopK         int
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	IdleTTL       time.Duration // idle window before eviction; 0 disables
	SweepInterval time.Duration
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	Voice       string
	Timeout     time.Duration
	ArtifactTTL time.Duration // how long synthesized audio stays retrievable
}

// CRMConfig holds Google Sheets CRM settings.
type CRMConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	SheetRange      string
	MaxAttempts     int // bounded retries for the summary row write
}

// RedisConfig holds Redis connection settings for the audio artifact store.
// An empty Addr selects the in-memory store instead.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only; HOTEL_GEMINI_API_KEY must
// always be set explicitly.
func Load() (*Config, error) {
	readTimeout, err := getEnvDuration("HOTEL_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("HOTEL_SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimit, err := getEnvFloat("HOTEL_SERVER_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("HOTEL_SERVER_RATE_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	llmTimeout, err := getEnvDuration("HOTEL_LLM_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	historyWindow, err := getEnvInt("HOTEL_LLM_HISTORY_WINDOW", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ragThreshold, err := getEnvFloat("HOTEL_RAG_THRESHOLD", 0.65)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ragTopK, err := getEnvInt("HOTEL_RAG_TOP_K", 1)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	idleTTL, err := getEnvDuration("HOTEL_SESSION_IDLE_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sweepInterval, err := getEnvDuration("HOTEL_SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ttsTimeout, err := getEnvDuration("HOTEL_TTS_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	artifactTTL, err := getEnvDuration("HOTEL_AUDIO_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	crmAttempts, err := getEnvInt("HOTEL_CRM_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("HOTEL_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnv("HOTEL_SERVER_ADDR", ":8000"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  getEnvList("HOTEL_CORS_ORIGINS", []string{"*"}),
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
		},
		LLM: LLMConfig{
			APIKey:        getEnv("HOTEL_GEMINI_API_KEY", ""),
			Model:         getEnv("HOTEL_LLM_MODEL", "gemini-2.5-flash-lite"),
			EmbedModel:    getEnv("HOTEL_LLM_EMBED_MODEL", "text-embedding-004"),
			Timeout:       llmTimeout,
			HistoryWindow: historyWindow,
		},
		RAG: RAGConfig{
			SnapshotPath: getEnv("HOTEL_RAG_SNAPSHOT", "./knowledge_snapshot.json"),
			Threshold:    ragThreshold,
			TopK:         ragTopK,
		},
		Session: SessionConfig{
			IdleTTL:       idleTTL,
			SweepInterval: sweepInterval,
		},
		TTS: TTSConfig{
			Voice:       getEnv("HOTEL_TTS_VOICE", "en-GB-SoniaNeural"),
			Timeout:     ttsTimeout,
			ArtifactTTL: artifactTTL,
		},
		CRM: CRMConfig{
			SpreadsheetID:   getEnv("HOTEL_CRM_SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("HOTEL_CRM_CREDENTIALS_FILE", "credentials.json"),
			SheetRange:      getEnv("HOTEL_CRM_SHEET_RANGE", "Sheet1!A1"),
			MaxAttempts:     crmAttempts,
		},
		Redis: RedisConfig{
			Addr:     getEnv("HOTEL_REDIS_ADDR", ""),
			Password: getEnv("HOTEL_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("HOTEL_GEMINI_API_KEY is required")
	}

	if c.CRM.SpreadsheetID == "" {
		log.Warn().Msg("HOTEL_CRM_SPREADSHEET_ID not set; call summaries will only be logged locally")
	}

	if c.RAG.Threshold < 0 || c.RAG.Threshold > 1 {
		return fmt.Errorf("HOTEL_RAG_THRESHOLD must be in [0,1], got %g", c.RAG.Threshold)
	}
	if c.RAG.TopK < 1 {
		return fmt.Errorf("HOTEL_RAG_TOP_K must be >= 1, got %d", c.RAG.TopK)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("HOTEL_LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.HistoryWindow < 1 {
		return fmt.Errorf("HOTEL_LLM_HISTORY_WINDOW must be >= 1, got %d", c.LLM.HistoryWindow)
	}
	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("HOTEL_SESSION_IDLE_TTL must be >= 0, got %s", c.Session.IdleTTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("HOTEL_SESSION_SWEEP_INTERVAL must be positive, got %s", c.Session.SweepInterval)
	}
	if c.TTS.Timeout <= 0 {
		return fmt.Errorf("HOTEL_TTS_TIMEOUT must be positive, got %s", c.TTS.Timeout)
	}
	if c.TTS.ArtifactTTL <= 0 {
		return fmt.Errorf("HOTEL_AUDIO_TTL must be positive, got %s", c.TTS.ArtifactTTL)
	}
	if c.CRM.MaxAttempts < 1 {
		return fmt.Errorf("HOTEL_CRM_MAX_ATTEMPTS must be >= 1, got %d", c.CRM.MaxAttempts)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("HOTEL_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HOTEL_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("HOTEL_SERVER_RATE_LIMIT must be positive, got %g", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("HOTEL_SERVER_RATE_BURST must be >= 1, got %d", c.Server.RateBurst)
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
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
