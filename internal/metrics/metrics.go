package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitserve",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitserve",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	ManagedTorrents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitserve",
		Name:      "managed_torrents",
		Help:      "Number of torrent sessions currently managed by the engine.",
	})

	DownloadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitserve",
		Name:      "download_speed_bytes",
		Help:      "Current aggregate download speed in bytes per second.",
	})

	UploadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitserve",
		Name:      "upload_speed_bytes",
		Help:      "Current aggregate upload speed in bytes per second.",
	})

	PeersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitserve",
		Name:      "peers_connected",
		Help:      "Total number of peers connected across all sessions.",
	})

	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitserve",
		Name:      "events_published_total",
		Help:      "Total lifecycle events published by type.",
	}, []string{"type"})

	WebhookQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitserve",
		Name:      "webhook_queue_depth",
		Help:      "Number of lifecycle events waiting for webhook delivery.",
	})

	WebhookDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitserve",
		Name:      "webhook_deliveries_total",
		Help:      "Webhook delivery outcomes by result (delivered or failed).",
	}, []string{"result"})

	WebhookRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bitserve",
		Name:      "webhook_retries_total",
		Help:      "Total webhook delivery retry attempts.",
	})

	WebhookDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bitserve",
		Name:      "webhook_dropped_total",
		Help:      "Lifecycle events dropped because the delivery queue was full.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ManagedTorrents,
		DownloadSpeedBytes,
		UploadSpeedBytes,
		PeersConnected,
		EventsPublishedTotal,
		WebhookQueueDepth,
		WebhookDeliveriesTotal,
		WebhookRetriesTotal,
		WebhookDroppedTotal,
	)
}
