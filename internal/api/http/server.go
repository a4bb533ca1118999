package apihttp

import (
	"context"
	"log/slog"
	"net/http"

	"bitserve/internal/domain"
	"bitserve/internal/usecase"
	"bitserve/internal/webhook"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type AddTorrentsUseCase interface {
	Execute(ctx context.Context, uploads []usecase.TorrentUpload) []usecase.AddResult
}

type RemoveTorrentsUseCase interface {
	Execute(ctx context.Context, hashes []domain.InfoHash, deleteFiles bool) []usecase.RemoveResult
}

type ListTorrentsUseCase interface {
	Execute(ctx context.Context) ([]usecase.TorrentView, error)
}

type SystemInfoUseCase interface {
	Execute(ctx context.Context) (usecase.HostUsage, error)
}

// WebhookService is the slice of the dispatcher the API needs: registration,
// listing and delivery counters.
type WebhookService interface {
	Subscribe(ctx context.Context, sub domain.WebhookSubscription) error
	Subscriptions() []domain.WebhookSubscription
	Stats() webhook.Stats
}

type Server struct {
	addTorrents    AddTorrentsUseCase
	removeTorrents RemoveTorrentsUseCase
	listTorrents   ListTorrentsUseCase
	systemInfo     SystemInfoUseCase
	webhooks       WebhookService
	allowedOrigins []string
	logger         *slog.Logger
	handler        http.Handler
	wsHub          *wsHub
}

type ServerOption func(*Server)

func WithRemoveTorrents(uc RemoveTorrentsUseCase) ServerOption {
	return func(s *Server) {
		s.removeTorrents = uc
	}
}

func WithListTorrents(uc ListTorrentsUseCase) ServerOption {
	return func(s *Server) {
		s.listTorrents = uc
	}
}

func WithSystemInfo(uc SystemInfoUseCase) ServerOption {
	return func(s *Server) {
		s.systemInfo = uc
	}
}

func WithWebhooks(svc WebhookService) ServerOption {
	return func(s *Server) {
		s.webhooks = svc
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(add AddTorrentsUseCase, opts ...ServerOption) *Server {
	s := &Server{
		addTorrents: add,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/add-torrents", s.handleAddTorrents)
	mux.HandleFunc("/add-torrents/", s.handleAddTorrents)
	mux.HandleFunc("/torrents", s.handleListTorrents)
	mux.HandleFunc("/torrents/", s.handleListTorrents)
	mux.HandleFunc("/remove-torrents", s.handleRemoveTorrents)
	mux.HandleFunc("/remove-torrents/", s.handleRemoveTorrents)
	mux.HandleFunc("/register-webhook", s.handleWebhooks)
	mux.HandleFunc("/register-webhook/", s.handleWebhooks)
	mux.HandleFunc("/system-info", s.handleSystemInfo)
	mux.HandleFunc("/system-info/", s.handleSystemInfo)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "bitserve",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}

// BroadcastEvent mirrors a lifecycle event to all connected WebSocket clients.
func (s *Server) BroadcastEvent(event domain.LifecycleEvent) {
	if s.wsHub != nil {
		s.wsHub.BroadcastEvent(event)
	}
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}
