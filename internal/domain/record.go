package domain

import (
	"errors"
	"time"
)

// InfoHash is the hex-encoded info hash of a torrent, used as the primary
// key across the whole system.
type InfoHash string

// TorrentRecord is the durable view of one managed torrent. Source holds the
// raw bytes of the uploaded .torrent file so the torrent can be re-added to
// the engine after a restart (the engine keeps no state across restarts).
type TorrentRecord struct {
	InfoHash  InfoHash      `json:"infoHash"`
	Name      string        `json:"name"`
	Status    TorrentStatus `json:"status"`
	Source    []byte        `json:"-"`
	AddedAt   time.Time     `json:"addedAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Validate checks domain invariants for TorrentRecord.
func (r TorrentRecord) Validate() error {
	if r.InfoHash == "" {
		return errors.New("info hash is required")
	}
	if len(r.Source) == 0 {
		return errors.New("source metadata is required")
	}
	switch r.Status {
	case TorrentPending, TorrentDownloading, TorrentSeeding, TorrentPaused, TorrentError:
		// valid
	case "":
		return errors.New("status is required")
	default:
		return errors.New("invalid status: " + string(r.Status))
	}
	return nil
}
