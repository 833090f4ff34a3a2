package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Bitable BitableConfig
	AuthAPI AuthAPIConfig
	Session SessionConfig
	Topics  TopicConfig
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

// BitableConfig identifies the external table app that stores submissions.
// AppID/AppSecret are the tenant credentials; AppToken/TableID address the
// one logical "submissions" table.
type BitableConfig struct {
	BaseURL   string
	AppID     string
	AppSecret string
	AppToken  string
	TableID   string
}

type AuthAPIConfig struct {
	BaseURL string
}

type SessionConfig struct {
	RevalidateSeconds int
}

type TopicConfig struct {
	SubmissionCreated string
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Bitable: BitableConfig{
			BaseURL:   getEnv("BITABLE_BASE_URL", "https://open.feishu.cn/open-apis"),
			AppID:     getEnv("BITABLE_APP_ID", ""),
			AppSecret: getEnv("BITABLE_APP_SECRET", ""),
			AppToken:  getEnv("BITABLE_APP_TOKEN", ""),
			TableID:   getEnv("BITABLE_TABLE_ID", ""),
		},
		AuthAPI: AuthAPIConfig{
			BaseURL: getEnv("AUTH_API_BASE_URL", "http://localhost:8000/api"),
		},
		Session: SessionConfig{
			RevalidateSeconds: getEnvAsInt("SESSION_REVALIDATE_SECONDS", 300),
		},
		Topics: TopicConfig{
			SubmissionCreated: getEnv("SUBMISSION_CREATED_TOPIC_NAME", "SUBMISSION_CREATED"),
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
