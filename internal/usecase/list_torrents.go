package usecase

import (
	"context"
	"errors"
	"time"

	"bitserve/internal/domain"
	"bitserve/internal/domain/ports"
)

// TorrentView is one row of the merged torrent listing: the persisted record
// enriched with live engine state when the engine has a session for the hash.
type TorrentView struct {
	InfoHash       domain.InfoHash      `json:"infoHash"`
	Name           string               `json:"name"`
	Status         domain.TorrentStatus `json:"status"`
	Progress       float64              `json:"progress"`
	DownloadRate   int64                `json:"downloadRate"`
	UploadRate     int64                `json:"uploadRate"`
	Peers          int                  `json:"peers"`
	SeedingSeconds int64                `json:"seedingSeconds"`
	AddedAt        time.Time            `json:"addedAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ListTorrents merges the session store with live engine status. The engine
// wins when it reports a state; otherwise the last persisted status is shown,
// which covers the window between a restart and engine re-registration.
type ListTorrents struct {
	Engine ports.Engine
	Repo   ports.TorrentRepository
}

func (uc ListTorrents) Execute(ctx context.Context) ([]TorrentView, error) {
	records, err := uc.Repo.LoadAll(ctx)
	if err != nil {
		return nil, wrapRepo(err)
	}

	views := make([]TorrentView, 0, len(records))
	for _, record := range records {
		view := TorrentView{
			InfoHash:  record.InfoHash,
			Name:      record.Name,
			Status:    record.Status,
			AddedAt:   record.AddedAt,
			UpdatedAt: record.UpdatedAt,
		}

		state, err := uc.Engine.State(ctx, record.InfoHash)
		if err == nil {
			view.Status = state.Status
			view.Progress = state.Progress
			view.DownloadRate = state.DownloadRate
			view.UploadRate = state.UploadRate
			view.Peers = state.Peers
			view.SeedingSeconds = state.SeedingSeconds
			if state.Name != "" {
				view.Name = state.Name
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, wrapEngine(err)
		}

		views = append(views, view)
	}

	return views, nil
}
