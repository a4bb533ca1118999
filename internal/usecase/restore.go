package usecase

import (
	"context"
	"log/slog"
	"time"

	"bitserve/internal/domain"
	"bitserve/internal/domain/ports"
)

// Restore is the startup reconciliation: the engine holds no state across
// restarts, so every persisted record is re-added from its retained source
// metadata before the HTTP server accepts traffic. Records whose re-add fails
// are marked error but kept, so operators can see and remove them instead of
// having them silently vanish.
type Restore struct {
	Engine  ports.Engine
	Repo    ports.TorrentRepository
	Logger  *slog.Logger
	Timeout time.Duration
}

// Run loads all records and re-registers them with the engine. It returns an
// error only when the store itself cannot be read; that is fatal for the
// caller, since starting with a silently empty torrent set would orphan the
// operator's expectations.
func (uc Restore) Run(ctx context.Context) error {
	records, err := uc.Repo.LoadAll(ctx)
	if err != nil {
		return wrapRepo(err)
	}
	if len(records) == 0 {
		return nil
	}

	uc.Logger.Info("restoring torrents", slog.Int("count", len(records)))

	restored := 0
	for _, record := range records {
		addCtx, cancel := context.WithTimeout(ctx, uc.timeout())
		_, addErr := uc.Engine.Add(addCtx, record.Source)
		cancel()

		if addErr != nil {
			uc.Logger.Warn("restore: engine re-add failed",
				slog.String("infoHash", string(record.InfoHash)),
				slog.String("error", addErr.Error()),
			)
			uc.markError(ctx, record)
			continue
		}

		if record.Status == domain.TorrentError {
			record.Status = domain.TorrentPending
			record.UpdatedAt = time.Now().UTC()
			if err := uc.Repo.Put(ctx, record); err != nil {
				uc.Logger.Warn("restore: record update failed",
					slog.String("infoHash", string(record.InfoHash)),
					slog.String("error", err.Error()),
				)
			}
		}
		restored++
	}

	uc.Logger.Info("restore finished",
		slog.Int("restored", restored),
		slog.Int("failed", len(records)-restored),
	)
	return nil
}

func (uc Restore) markError(ctx context.Context, record domain.TorrentRecord) {
	if record.Status == domain.TorrentError {
		return
	}
	record.Status = domain.TorrentError
	record.UpdatedAt = time.Now().UTC()
	if err := uc.Repo.Put(ctx, record); err != nil {
		uc.Logger.Warn("restore: mark error failed",
			slog.String("infoHash", string(record.InfoHash)),
			slog.String("error", err.Error()),
		)
	}
}

func (uc Restore) timeout() time.Duration {
	if uc.Timeout > 0 {
		return uc.Timeout
	}
	return defaultOpTimeout
}
