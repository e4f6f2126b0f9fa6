package bootstrap

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string

	APIBase     string
	RealtimeURL string
	APIKey      string

	Model     string
	ChatModel string
	Voice     string

	Instructions string

	ConnectTimeoutSec int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		APIBase:     getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
		RealtimeURL: getEnv("OPENAI_REALTIME_URL", "wss://api.openai.com/v1/realtime"),
		APIKey:      getEnv("OPENAI_API_KEY", ""),

		Model:     getEnv("REALTIME_MODEL", "gpt-4o-realtime-preview"),
		ChatModel: getEnv("CHAT_MODEL", "gpt-4o-mini"),
		Voice:     getEnv("REALTIME_VOICE", "alloy"),

		Instructions: getEnv("SESSION_INSTRUCTIONS", ""),

		ConnectTimeoutSec: getEnvInt("CONNECT_TIMEOUT_SEC", 15),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
