package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bitserve/internal/domain"
	"bitserve/internal/domain/ports"
)

// SyncState periodically folds live engine status back into the session
// store, so listings stay meaningful after a restart and a torrent reaching
// seeding emits exactly one torrent_completed event.
type SyncState struct {
	Engine   ports.Engine
	Repo     ports.TorrentRepository
	Events   ports.EventPublisher
	Locks    *HashLocks
	Logger   *slog.Logger
	Interval time.Duration
}

func (s SyncState) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Sync performs a single reconciliation pass.
func (s SyncState) Sync(ctx context.Context) {
	hashes, err := s.Engine.List(ctx)
	if err != nil {
		s.Logger.Warn("sync: list sessions failed", slog.String("error", err.Error()))
		return
	}

	for _, hash := range hashes {
		s.syncOne(ctx, hash)
	}
}

func (s SyncState) syncOne(ctx context.Context, hash domain.InfoHash) {
	unlock := s.Locks.Lock(hash)
	defer unlock()

	state, err := s.Engine.State(ctx, hash)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Logger.Warn("sync: session state failed",
				slog.String("infoHash", string(hash)),
				slog.String("error", err.Error()))
		}
		return
	}

	record, err := s.Repo.Get(ctx, hash)
	if err != nil {
		// A session the store no longer knows is a removal in flight; the
		// remove path owns it.
		if !errors.Is(err, domain.ErrNotFound) {
			s.Logger.Warn("sync: record fetch failed",
				slog.String("infoHash", string(hash)),
				slog.String("error", err.Error()))
		}
		return
	}

	if state.Status == record.Status && (state.Name == "" || state.Name == record.Name) {
		return
	}

	completed := state.Status == domain.TorrentSeeding && record.Status != domain.TorrentSeeding

	record.Status = state.Status
	if state.Name != "" {
		record.Name = state.Name
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Put(ctx, record); err != nil {
		s.Logger.Warn("sync: record update failed",
			slog.String("infoHash", string(hash)),
			slog.String("error", err.Error()))
		return
	}

	if completed && s.Events != nil {
		s.Events.Publish(domain.LifecycleEvent{
			Type:       domain.EventTorrentCompleted,
			InfoHash:   hash,
			Payload:    state,
			OccurredAt: record.UpdatedAt,
		})
	}
}
