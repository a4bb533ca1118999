package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	MongoURI           string
	MongoDatabase      string
	MongoCollection    string
	MongoWebhooks      string
	LogLevel           string
	LogFormat          string
	DownloadDir        string
	TorrentListenAddr  string
	MaxConnsPerTorrent int
	EngineTimeout      time.Duration
	AddParallelism     int64
	SyncInterval       time.Duration
	WebhookQueueSize   int
	WebhookWorkers     int
	WebhookAttempts    int
	WebhookTimeout     time.Duration
	AllowedOrigins     []string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DB", "bitserve"),
		MongoCollection:    getEnv("MONGO_COLLECTION", "torrents"),
		MongoWebhooks:      getEnv("MONGO_WEBHOOK_COLLECTION", "webhooks"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DownloadDir:        getEnv("DOWNLOAD_DIR", "data"),
		TorrentListenAddr:  getEnv("TORRENT_LISTEN_ADDR", "0.0.0.0:6881"),
		MaxConnsPerTorrent: int(getEnvInt64("TORRENT_MAX_CONNS", 0)),
		EngineTimeout:      getEnvDuration("ENGINE_TIMEOUT", 30*time.Second),
		AddParallelism:     getEnvInt64("ADD_PARALLELISM", 8),
		SyncInterval:       getEnvDuration("SYNC_INTERVAL", 10*time.Second),
		WebhookQueueSize:   int(getEnvInt64("WEBHOOK_QUEUE_SIZE", 1024)),
		WebhookWorkers:     int(getEnvInt64("WEBHOOK_WORKERS", 4)),
		WebhookAttempts:    int(getEnvInt64("WEBHOOK_MAX_ATTEMPTS", 5)),
		WebhookTimeout:     getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		AllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
