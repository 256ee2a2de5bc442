package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Policy    PolicyConfig
	Answers   AnswersConfig
	Moderator ModeratorConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host           string
	Port           int
	Email          string
	Password       string
	SenderName     string
	AlertRecipient string
}

type APIKeys struct {
	OpenAI  string
	KbTopic string // Knowledge-base embedding topic
}

type AIConfig struct {
	EmbeddingProvider    string // "openai" or "ollama"
	OpenAIEmbeddingModel string
	OllamaBaseURL        string
	OllamaModel          string
	LLMProvider          string // "openai" or "ollama"
	LLMModel             string
	RetrievalTopK        int
}

// PolicyConfig drives the escalation triggers. The staffed-hours window is
// off by default so the assistant answers around the clock.
type PolicyConfig struct {
	WindowEnabled       bool
	WindowStart         int
	WindowEnd           int
	Timezone            string
	SensitiveKeywords   []string
	ConfidenceThreshold float64
	FuzzyThreshold      int
}

type AnswersConfig struct {
	FilePath     string // empty means the bundled table
	WatchEnabled bool
}

type ModeratorConfig struct {
	Username     string
	PasswordHash string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", ""),
			Port:           getEnvAsInt("SMTP_PORT", 587),
			Email:          getEnv("SMTP_EMAIL", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			SenderName:     getEnv("SMTP_SENDER_NAME", "School Concierge"),
			AlertRecipient: getEnv("ESCALATION_ALERT_EMAIL", ""),
		},
		Keys: APIKeys{
			OpenAI:  getEnv("OPENAI_API_KEY", ""),
			KbTopic: getEnv("EMBED_KB_DOCUMENT_TOPIC_NAME", "EMBED_KB_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "openai"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "openai"),
			LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
			RetrievalTopK:        getEnvAsInt("RETRIEVAL_TOP_K", 20),
		},
		Policy: PolicyConfig{
			WindowEnabled:       getEnvAsBool("ESCALATION_WINDOW_ENABLED", false),
			WindowStart:         getEnvAsInt("ESCALATION_WINDOW_START_HOUR", 9),
			WindowEnd:           getEnvAsInt("ESCALATION_WINDOW_END_HOUR", 17),
			Timezone:            getEnv("ESCALATION_TIMEZONE", "Europe/London"),
			SensitiveKeywords:   getEnvAsSlice("SENSITIVE_KEYWORDS", []string{"bullying", "abuse", "harassment"}),
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.7),
			FuzzyThreshold:      getEnvAsInt("FUZZY_MATCH_THRESHOLD", 80),
		},
		Answers: AnswersConfig{
			FilePath:     getEnv("ANSWERS_FILE_PATH", ""),
			WatchEnabled: getEnvAsBool("ANSWERS_WATCH_ENABLED", true),
		},
		Moderator: ModeratorConfig{
			Username:     getEnv("MODERATOR_USERNAME", "reception"),
			PasswordHash: getEnv("MODERATOR_PASSWORD_HASH", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
