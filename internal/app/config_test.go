package app

import (
	"os"
	"testing"
	"time"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Clear all env vars that LoadConfig reads so we get pure defaults.
	envVars := []string{
		"HTTP_ADDR", "MONGO_URI", "MONGO_DB", "MONGO_COLLECTION",
		"MONGO_WEBHOOK_COLLECTION", "LOG_LEVEL", "LOG_FORMAT",
		"DOWNLOAD_DIR", "TORRENT_LISTEN_ADDR", "TORRENT_MAX_CONNS",
		"ENGINE_TIMEOUT", "ADD_PARALLELISM", "SYNC_INTERVAL",
		"WEBHOOK_QUEUE_SIZE", "WEBHOOK_WORKERS", "WEBHOOK_MAX_ATTEMPTS",
		"WEBHOOK_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := LoadConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"HTTPAddr", cfg.HTTPAddr, ":8080"},
		{"MongoURI", cfg.MongoURI, "mongodb://localhost:27017"},
		{"MongoDatabase", cfg.MongoDatabase, "bitserve"},
		{"MongoCollection", cfg.MongoCollection, "torrents"},
		{"MongoWebhooks", cfg.MongoWebhooks, "webhooks"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "text"},
		{"DownloadDir", cfg.DownloadDir, "data"},
		{"TorrentListenAddr", cfg.TorrentListenAddr, "0.0.0.0:6881"},
		{"MaxConnsPerTorrent", cfg.MaxConnsPerTorrent, 0},
		{"EngineTimeout", cfg.EngineTimeout, 30 * time.Second},
		{"AddParallelism", cfg.AddParallelism, int64(8)},
		{"SyncInterval", cfg.SyncInterval, 10 * time.Second},
		{"WebhookQueueSize", cfg.WebhookQueueSize, 1024},
		{"WebhookWorkers", cfg.WebhookWorkers, 4},
		{"WebhookAttempts", cfg.WebhookAttempts, 5},
		{"WebhookTimeout", cfg.WebhookTimeout, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", tt.got, tt.got, tt.want, tt.want)
			}
		})
	}

	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins: got %v, want nil/empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	setEnvs(t, map[string]string{
		"HTTP_ADDR":            ":9090",
		"MONGO_URI":            "mongodb://remote:27017",
		"MONGO_DB":             "mydb",
		"DOWNLOAD_DIR":         "/srv/torrents",
		"TORRENT_LISTEN_ADDR":  "0.0.0.0:7000",
		"ENGINE_TIMEOUT":       "45s",
		"WEBHOOK_QUEUE_SIZE":   "64",
		"WEBHOOK_MAX_ATTEMPTS": "3",
		"CORS_ALLOWED_ORIGINS": "https://ui.example.com, https://admin.example.com",
	})

	cfg := LoadConfig()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MongoURI != "mongodb://remote:27017" {
		t.Errorf("MongoURI = %q", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "mydb" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.DownloadDir != "/srv/torrents" {
		t.Errorf("DownloadDir = %q", cfg.DownloadDir)
	}
	if cfg.TorrentListenAddr != "0.0.0.0:7000" {
		t.Errorf("TorrentListenAddr = %q", cfg.TorrentListenAddr)
	}
	if cfg.EngineTimeout != 45*time.Second {
		t.Errorf("EngineTimeout = %v", cfg.EngineTimeout)
	}
	if cfg.WebhookQueueSize != 64 {
		t.Errorf("WebhookQueueSize = %d", cfg.WebhookQueueSize)
	}
	if cfg.WebhookAttempts != 3 {
		t.Errorf("WebhookAttempts = %d", cfg.WebhookAttempts)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://ui.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENGINE_TIMEOUT":     "not-a-duration",
		"WEBHOOK_QUEUE_SIZE": "-5",
		"ADD_PARALLELISM":    "abc",
	})

	cfg := LoadConfig()

	if cfg.EngineTimeout != 30*time.Second {
		t.Errorf("EngineTimeout = %v, want default", cfg.EngineTimeout)
	}
	if cfg.WebhookQueueSize != 1024 {
		t.Errorf("WebhookQueueSize = %d, want default", cfg.WebhookQueueSize)
	}
	if cfg.AddParallelism != 8 {
		t.Errorf("AddParallelism = %d, want default", cfg.AddParallelism)
	}
}
