package ports

import (
	"context"

	"bitserve/internal/domain"
)

// TorrentRepository is the durable session store, keyed by info hash. Put is
// an atomic per-key upsert; LoadAll is called once at startup before any API
// traffic is accepted.
type TorrentRepository interface {
	Put(ctx context.Context, t domain.TorrentRecord) error
	Get(ctx context.Context, hash domain.InfoHash) (domain.TorrentRecord, error)
	Delete(ctx context.Context, hash domain.InfoHash) error
	LoadAll(ctx context.Context) ([]domain.TorrentRecord, error)
}

// WebhookRepository persists webhook subscriptions so registrations survive
// process restarts.
type WebhookRepository interface {
	Add(ctx context.Context, sub domain.WebhookSubscription) error
	List(ctx context.Context) ([]domain.WebhookSubscription, error)
}
